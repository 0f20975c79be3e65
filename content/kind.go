package content

// Kind classification of a model
type Kind int

const (
	KindNone Kind = iota
	KindPage
	KindSite
	KindFile
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindSite:
		return "site"
	case KindFile:
		return "file"
	case KindUser:
		return "user"
	default:
		return "none"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "page":
		*k = KindPage
	case "site":
		*k = KindSite
	case "file":
		*k = KindFile
	case "user":
		*k = KindUser
	default:
		*k = KindNone
	}
	return nil
}
