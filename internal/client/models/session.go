package models

// Session holds the authenticated identity, exactly as persisted between
// runs. The zero value is the logged-out default.
//
// Password is kept because the credential header is derived from the
// username/password pair; it never leaves the encrypted local store except
// inside the Authorization header.
type Session struct {
	IsLoggedIn  bool   `json:"isLoggedIn"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Image       string `json:"image,omitempty"`
	Password    string `json:"password,omitempty"`
	Token       string `json:"token,omitempty"`
}

// AuthResponse is the body returned by a successful login.
type AuthResponse struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Image       string `json:"image,omitempty"`
	Token       string `json:"token"`
}
