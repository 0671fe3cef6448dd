package model

// GenerateResponse represents response for POST /wallet/generate and
// POST /wallet/import
type GenerateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address,omitempty"`
	Saved   bool   `json:"saved"`
}

// PasswordRequest represents body for POST /auth/setup and POST /auth/login
type PasswordRequest struct {
	Password string `json:"password"`
}

// ChangePasswordRequest represents body for POST /auth/change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthResponse represents response for the /auth endpoints
type AuthResponse struct {
	Success  bool   `json:"success"`
	Phase    string `json:"phase"`
	Message  string `json:"message"`
	Restored bool   `json:"restored,omitempty"`
	Address  string `json:"address,omitempty"`
}
