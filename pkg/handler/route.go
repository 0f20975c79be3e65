package handler

// Route type
type Route string

const (
	// RoutePage get a page by path or uuid
	RoutePage Route = "page"
	// RouteFile get a file by path or uuid
	RouteFile Route = "file"
	// RouteFind get a model of any kind
	RouteFind Route = "find"
	// RouteChildren get the models below a model
	RouteChildren Route = "children"
	// RouteSite get the whole site index
	RouteSite Route = "site"
	// RouteUpdate force a full reload
	RouteUpdate Route = "update"
	// RouteTitle plain text title of a page
	RouteTitle Route = "title"
	// RouteRobots robots.txt
	RouteRobots Route = "robots"
	// RouteSitemap sitemap.xml of the listed pages
	RouteSitemap Route = "sitemap"
)

// Pattern the mux pattern of a route below the base path
func (r Route) Pattern(path string) string {
	switch r {
	case RoutePage:
		return "GET " + path + "/api/pages/{search...}"
	case RouteFile:
		return "GET " + path + "/api/files/{search...}"
	case RouteFind:
		return "GET " + path + "/api/find/{search...}"
	case RouteChildren:
		return "GET " + path + "/api/children/{search...}"
	case RouteSite:
		return "GET " + path + "/api/site"
	case RouteUpdate:
		return "POST " + path + "/api/update"
	case RouteRobots:
		return "GET " + path + "/robots.txt"
	case RouteSitemap:
		return "GET " + path + "/sitemap.xml"
	default:
		return "GET " + path + "/{search...}"
	}
}
