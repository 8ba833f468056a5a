package client

// ErrorResponse is the standard API error shape
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ValueRange is a block of cell values for one range.
type ValueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

// BatchGetResponse is the response from values:batchGet
type BatchGetResponse struct {
	SpreadsheetID string       `json:"spreadsheetId"`
	ValueRanges   []ValueRange `json:"valueRanges"`
}

// UpdateResponse is the response from a values update
type UpdateResponse struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int    `json:"updatedRows"`
	UpdatedColumns int    `json:"updatedColumns"`
	UpdatedCells   int    `json:"updatedCells"`
}

// BatchUpdateRequest is the request body for values:batchUpdate
type BatchUpdateRequest struct {
	ValueInputOption string       `json:"valueInputOption"`
	Data             []ValueRange `json:"data"`
}

// BatchClearRequest is the request body for values:batchClear
type BatchClearRequest struct {
	Ranges []string `json:"ranges"`
}

// relayRequest is one request frame sent to a sheet relay.
type relayRequest struct {
	ID            int64     `json:"id"`
	Op            string    `json:"op"` // get|batchGet|update|batchUpdate|clear|batchClear
	SpreadsheetID string    `json:"spreadsheetId,omitempty"`
	Ranges        []string  `json:"ranges"`
	Values        [][][]any `json:"values,omitempty"`
}

// relayResponse is the reply frame for a relayRequest.
type relayResponse struct {
	ID     int64       `json:"id"`
	Ok     bool        `json:"ok"`
	Status int         `json:"status"`
	Values [][][]any   `json:"values,omitempty"`
	Error  *relayError `json:"error,omitempty"`
}

type relayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
