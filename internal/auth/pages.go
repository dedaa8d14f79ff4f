package auth

import "html/template"

// Client-side timing for the interstitial pages, in milliseconds. The app
// redirect fires first; the manual fallback link is revealed later for user
// agents that block custom URI schemes.
const (
	callbackRedirectDelayMS = 1000
	confirmRedirectDelayMS  = 2000
	resetRedirectDelayMS    = 2000
	fallbackRevealDelayMS   = 5000
)

var (
	callbackPageTmpl = template.Must(template.New("callback").Parse(callbackPageHTML))
	confirmPageTmpl  = template.Must(template.New("confirm").Parse(confirmPageHTML))
	resetPageTmpl    = template.Must(template.New("reset").Parse(resetPageHTML))
)

// callbackPageData renders the post-OAuth interstitial. AppURL already
// carries the session tokens as query parameters; template.URL keeps
// html/template from rejecting the custom petadopt:// scheme.
type callbackPageData struct {
	AppURL        template.URL
	RedirectDelay int
	FallbackDelay int
}

type confirmPageData struct {
	AppURL        template.URL
	RedirectDelay int
	FallbackDelay int
}

type resetPageData struct {
	AppURL        template.URL
	Token         string
	AccessToken   string
	RefreshToken  string
	RedirectDelay int
}

const callbackPageHTML = `<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Autenticación Exitosa - PetAdopt</title>
  <link rel="stylesheet" href="/styles/auth.css">
  <script>
    setTimeout(() => {
      window.location.href = '{{.AppURL}}';
    }, {{.RedirectDelay}});

    setTimeout(() => {
      document.getElementById('fallback').style.display = 'block';
    }, {{.FallbackDelay}});
  </script>
</head>
<body>
  <div class="container">
    <div class="success-icon">✓</div>
    <h1>¡Autenticación Exitosa!</h1>
    <p>Redirigiendo a PetAdopt...</p>

    <div id="fallback" style="display: none;">
      <p>Si no se abre automáticamente:</p>
      <a href="{{.AppURL}}" class="button">Abrir PetAdopt</a>
    </div>
  </div>
</body>
</html>
`

const confirmPageHTML = `<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Email Confirmado - PetAdopt</title>
  <link rel="stylesheet" href="/styles/auth.css">
  <script>
    setTimeout(() => {
      window.location.href = '{{.AppURL}}';
    }, {{.RedirectDelay}});

    setTimeout(() => {
      document.getElementById('fallback').style.display = 'block';
    }, {{.FallbackDelay}});
  </script>
</head>
<body>
  <div class="container">
    <div class="success-icon">✓</div>
    <h1>¡Email Confirmado!</h1>
    <p>Tu cuenta ha sido verificada exitosamente.</p>
    <p class="subtitle">Redirigiendo a la app...</p>

    <div id="fallback" style="display: none;">
      <p>Si no se abre automáticamente:</p>
      <a href="{{.AppURL}}" class="button">Abrir PetAdopt</a>
    </div>
  </div>
</body>
</html>
`

const resetPageHTML = `<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Restablecer Contraseña - PetAdopt</title>
  <link rel="stylesheet" href="/styles/auth.css">
</head>
<body>
  <div class="container">
    <div class="logo">🐾</div>
    <h1>Restablecer Contraseña</h1>
    <p>Ingresa tu nueva contraseña</p>

    <form id="resetForm">
      <div class="form-group">
        <label for="password">Nueva Contraseña</label>
        <input
          type="password"
          id="password"
          name="password"
          required
          minlength="6"
          placeholder="Mínimo 6 caracteres"
        >
      </div>

      <div class="form-group">
        <label for="confirmPassword">Confirmar Contraseña</label>
        <input
          type="password"
          id="confirmPassword"
          name="confirmPassword"
          required
          minlength="6"
          placeholder="Repite la contraseña"
        >
      </div>

      <button type="submit" class="button" id="submitBtn">
        Actualizar Contraseña
      </button>

      <div id="message" class="message"></div>
    </form>
  </div>

  <script>
    const form = document.getElementById('resetForm');
    const message = document.getElementById('message');
    const submitBtn = document.getElementById('submitBtn');

    form.addEventListener('submit', async (e) => {
      e.preventDefault();

      const password = document.getElementById('password').value;
      const confirmPassword = document.getElementById('confirmPassword').value;

      if (password !== confirmPassword) {
        message.className = 'message error';
        message.textContent = 'Las contraseñas no coinciden';
        return;
      }

      if (password.length < 6) {
        message.className = 'message error';
        message.textContent = 'La contraseña debe tener al menos 6 caracteres';
        return;
      }

      submitBtn.disabled = true;
      submitBtn.textContent = 'Actualizando...';

      try {
        const response = await fetch(window.location.pathname + window.location.search, {
          method: 'POST',
          headers: {
            'Content-Type': 'application/json',
          },
          body: JSON.stringify({
            password,
            token: '{{.Token}}',
            access_token: '{{.AccessToken}}',
            refresh_token: '{{.RefreshToken}}'
          }),
        });

        const data = await response.json();

        if (data.success) {
          message.className = 'message success';
          message.textContent = '✓ Contraseña actualizada. Redirigiendo...';

          setTimeout(() => {
            window.location.href = '{{.AppURL}}';
          }, {{.RedirectDelay}});
        } else {
          throw new Error(data.error || 'Error al actualizar contraseña');
        }
      } catch (error) {
        message.className = 'message error';
        message.textContent = error.message;
        submitBtn.disabled = false;
        submitBtn.textContent = 'Actualizar Contraseña';
      }
    });
  </script>
</body>
</html>
`
