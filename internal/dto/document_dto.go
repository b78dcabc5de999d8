package dto

type UploadDocumentResponse struct {
	Source string `json:"source"`
	Queued bool   `json:"queued"`
}

type EmbedDocumentMessage struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}
