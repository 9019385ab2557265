package transport

type EmailRequest struct {
	Email string `json:"email"`
}
