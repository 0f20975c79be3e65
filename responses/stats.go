package responses

// Stats counts of the site index after a load
type Stats struct {
	// every model, pages, files and the site models included
	NumberOfModels    int `json:"numberOfModels"`
	NumberOfPages     int `json:"numberOfPages"`
	NumberOfFiles     int `json:"numberOfFiles"`
	NumberOfLanguages int `json:"numberOfLanguages"`
	// time spent in the backend walking and parsing, seconds
	LoadRuntime float64 `json:"loadRuntime"`
	// seconds
	OwnRuntime float64 `json:"ownRuntime"`
}
