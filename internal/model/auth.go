package model

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type RegisterRequest struct {
	Name string `json:"name"`
}

type RegisterResponse struct {
	AccessToken string `json:"access_token"`
}

type LoginRequest struct {
	Name string `json:"name"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type UpdateUserRequest struct {
	Name string `json:"name"`
}

type UpdateUserResponse struct{}
