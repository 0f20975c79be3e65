package cmd

import (
	"github.com/foomo/flatfileserver/pkg/flatfile"
	"github.com/foomo/flatfileserver/pkg/site"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func addSiteFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addDirFlag(flags, v)
	addContentDirFlag(flags, v)
	addBaseURLFlag(flags, v)
	addHomeFlag(flags, v)
	addMultiLanguageFlag(flags, v)
	addExtensionsFlag(flags, v)
}

// newSite a site over the flat file backend configured by the site flags
func newSite(l *zap.Logger, v *viper.Viper, opts ...site.Option) *site.Site {
	backend := flatfile.New(l.Named("inst.flatfile"),
		contentDirFlag(v),
		flatfile.WithMultiLanguage(multiLanguageFlag(v)),
		flatfile.WithExtensions(extensionsFlag(v)...),
	)

	l.Info("using content directory",
		zap.String("dir", backend.Dir()),
		zap.Bool("multi_language", backend.MultiLanguage()),
	)

	opts = append([]site.Option{
		site.WithDir(dirFlag(v)),
		site.WithBaseURL(baseURLFlag(v)),
		site.WithHome(homeFlag(v)),
	}, opts...)

	return site.New(l.Named("inst.site"), backend, opts...)
}
