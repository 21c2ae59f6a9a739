package domain

// Typed views over API response bodies. The client returns bodies verbatim;
// these are only used where the CLI needs to read specific fields.

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Message is the body of mutating endpoints (delete, clear).
type Message struct {
	Message string `json:"message"`
}

type FileInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}

type FileList struct {
	Files []FileInfo `json:"files"`
	Total int        `json:"total"`
}

type UploadResult struct {
	Message string     `json:"message"`
	Files   []FileInfo `json:"files"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type QueryAnswer struct {
	Response string `json:"response"`
	Usage    Usage  `json:"usage"`
}

type ResponseInfo struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Size     int64   `json:"size"`
	Modified float64 `json:"modified"`
}

type ResponseList struct {
	Responses []ResponseInfo `json:"responses"`
	Total     int            `json:"total"`
}

type ResponseContent struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
