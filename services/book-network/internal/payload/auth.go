package payload

type RegisterRequest struct {
	Firstname string `json:"firstname" validate:"required,max=100"`
	Lastname  string `json:"lastname"  validate:"required,max=100"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8,max=72"`
}

type AuthenticateRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthenticateResponse struct {
	Token string `json:"token"`
}
