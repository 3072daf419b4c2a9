package auth

// Claims es la identidad ya verificada del usuario.
type Claims struct {
	UserID string
	Email  string
	Name   string
}
