package api

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-verify/pkg/errors"
	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/tokengenerator"
	"github.com/tendant/simple-verify/pkg/verification"
)

// Handle serves the verification flow over HTTP. Every browser session gets
// its own controller from the registry; an access token cookie is issued
// only once a session reaches Verified.
type Handle struct {
	registry     *Registry
	tokenService *tokengenerator.TokenService
	jwtAuth      *jwtauth.JWTAuth
}

// NewHandle creates a new Handle
func NewHandle(registry *Registry, tokenService *tokengenerator.TokenService, jwtAuth *jwtauth.JWTAuth) *Handle {
	return &Handle{
		registry:     registry,
		tokenService: tokenService,
		jwtAuth:      jwtAuth,
	}
}

// Routes mounts the verification endpoints plus the token-guarded /me.
func Routes(r *chi.Mux, h *Handle) {
	r.Post("/login", h.PostLogin)
	r.Route("/2fa", func(r chi.Router) {
		r.Post("/verify", h.Post2faVerify)
		r.Post("/resend", h.Post2faResend)
		r.Post("/channel", h.Post2faChannel)
		r.Get("/status", h.Get2faStatus)
		r.Post("/abandon", h.Post2faAbandon)
	})
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(h.jwtAuth))
		r.Use(jwtauth.Authenticator(h.jwtAuth))
		r.Get("/me", h.GetMe)
	})
}

type signInParams struct {
	Email    string
	Password string
}

// PostLogin runs the credential check and opens the second-factor challenge
// when the account requires one.
func (h *Handle) PostLogin(w http.ResponseWriter, r *http.Request) {
	controller, _, err := h.registry.ControllerFor(w, r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Code: string(errors.ErrCodeInvalidInput), Message: "unable to parse body"})
		return
	}

	var params signInParams
	if err := copier.Copy(&params, &req); err != nil {
		renderError(w, r, err)
		return
	}

	state, err := controller.SignIn(r.Context(), params.Email, params.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := LoginResponse{State: string(state)}
	if state == verification.StateVerified {
		user, _ := controller.User()
		if err := h.issueToken(w, user); err != nil {
			renderError(w, r, err)
			return
		}
		resp.User = userInfo(user)
	} else {
		resp.Channel = string(controller.ActiveChannel())
		resp.TotpAvailable = controller.TotpAvailable()
	}
	render.JSON(w, r, resp)
}

// Post2faVerify submits a second-factor code.
func (h *Handle) Post2faVerify(w http.ResponseWriter, r *http.Request) {
	controller, _, err := h.registry.ControllerFor(w, r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req VerifyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Code: string(errors.ErrCodeInvalidInput), Message: "unable to parse body"})
		return
	}

	state, err := controller.Submit(r.Context(), req.Code)
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := LoginResponse{State: string(state)}
	if state == verification.StateVerified {
		user, _ := controller.User()
		if err := h.issueToken(w, user); err != nil {
			renderError(w, r, err)
			return
		}
		resp.User = userInfo(user)
	}
	render.JSON(w, r, resp)
}

// Post2faResend requests a fresh email code, subject to the cooldown.
func (h *Handle) Post2faResend(w http.ResponseWriter, r *http.Request) {
	controller, _, err := h.registry.ControllerFor(w, r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := controller.Resend(r.Context()); err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse{Result: "success"})
}

// Post2faChannel switches the active verification channel.
func (h *Handle) Post2faChannel(w http.ResponseWriter, r *http.Request) {
	controller, _, err := h.registry.ControllerFor(w, r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req ChannelRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Code: string(errors.ErrCodeInvalidInput), Message: "unable to parse body"})
		return
	}

	if err := controller.SelectChannel(verification.VerificationChannel(req.Channel)); err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse{Result: "success"})
}

// Get2faStatus reports the session state and the code countdown.
func (h *Handle) Get2faStatus(w http.ResponseWriter, r *http.Request) {
	controller, _, err := h.registry.ControllerFor(w, r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	remaining := controller.Remaining()
	render.JSON(w, r, StatusResponse{
		State:           string(controller.State()),
		Channel:         string(controller.ActiveChannel()),
		RemainingSecs:   int(remaining / time.Second),
		Remaining:       verification.FormatCountdown(remaining),
		ResendAvailable: controller.ResendAvailable(),
		TotpAvailable:   controller.TotpAvailable(),
	})
}

// Post2faAbandon gives up the in-progress verification and clears any
// issued access token.
func (h *Handle) Post2faAbandon(w http.ResponseWriter, r *http.Request) {
	controller, _, err := h.registry.ControllerFor(w, r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	controller.Abandon()
	if err := h.tokenService.ClearAccessToken(w); err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse{Result: "success"})
}

// GetMe returns the authenticated user's token claims. Reachable only with
// a valid access token.
func (h *Handle) GetMe(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Code: string(errors.ErrCodeUnauthorized), Message: "invalid token"})
		return
	}
	render.JSON(w, r, claims)
}

func (h *Handle) issueToken(w http.ResponseWriter, user login.User) error {
	_, err := h.tokenService.IssueAndSetAccessToken(w, user.ID.String(), map[string]interface{}{
		"email":        user.Email,
		"2fa_verified": true,
	})
	return err
}

func userInfo(user login.User) *UserInfo {
	return &UserInfo{
		ID:            user.ID.String(),
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	}
}

// renderError maps structured errors to their HTTP status and body.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	render.Status(r, errors.MapErrorCodeToHTTPStatus(code))
	body := ErrorResponse{Code: string(code), Message: err.Error()}
	var structured *errors.Error
	if stderrors.As(err, &structured) {
		body.Message = structured.Message
	}
	render.JSON(w, r, body)
}
