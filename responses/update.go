package responses

// Update reply of a forced full load of the content directory. On failure
// the previous index is still served and the model count is -1.
type Update struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage"`
	// RunID correlates the reply with the server log
	RunID string `json:"runId"`
	Stats Stats  `json:"stats"`
}
