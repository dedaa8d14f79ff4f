package auth

// User-facing messages. The mobile app ships in Spanish, so the web
// interstitials and API errors do too.
const (
	msgInvalidCode      = "Código de autenticación no válido"
	msgInvalidToken     = "Token no válido"
	msgSessionFailed    = "No se pudo establecer la sesión"
	msgProfileFailed    = "No se pudo crear el perfil de usuario"
	msgEmailUnverified  = "No se pudo verificar el email"
	msgServerError      = "Error del servidor"
	msgPasswordTooShort = "La contraseña debe tener al menos 6 caracteres"
	msgPasswordUpdated  = "Contraseña actualizada correctamente"
)

// UpdatePasswordRequest is the JSON body accepted by the password-reset POST.
// Token carries the recovery one-time token embedded in the reset form;
// AccessToken/RefreshToken appear only in links issued by older reset emails.
type UpdatePasswordRequest struct {
	Password     string `json:"password" validate:"required,min=6"`
	Token        string `json:"token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
