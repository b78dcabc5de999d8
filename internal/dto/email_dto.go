package dto

type EmailDTO struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
	Body    string `json:"body"`
}

type GetEmailsResponse struct {
	Mode   string     `json:"mode"`
	Count  int        `json:"count"`
	Cached bool       `json:"cached"`
	Emails []EmailDTO `json:"emails"`
}
