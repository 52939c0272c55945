package handler

import (
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/config"
	"github.com/dencare-dev/staff-roster/backend/internal/repository"
	"github.com/dencare-dev/staff-roster/backend/internal/selection"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	sessions    *selection.Manager

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		sessions:    selection.NewManager(time.Duration(cfg.Selection.SessionExpiration) * time.Second),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/staff", func(r chi.Router) {
			r.With(h.requireAdmin).Post("/", h.CreateStaff)
			r.Get("/", h.GetAllStaffIdentities)
			r.Get("/replacement-candidates", h.GetReplacementCandidates)
		})

		r.Get("/rooms", h.GetAllRooms)
		r.With(h.selectionSession).Get("/shifts/slots", h.GetShiftSlots)

		r.Route("/selections", func(r chi.Router) {
			r.Use(h.selectionSession)
			r.Get("/summary", h.GetSelectionSummary)
			r.Post("/switch-scope", h.SwitchScope)
			r.Post("/filters", h.SetShiftFilters)
			r.With(h.preventWhileBusy).Post("/toggle-slot", h.ToggleSlot)
			r.With(h.preventWhileBusy).Post("/toggle-shift", h.ToggleWholeShift)
			r.With(h.preventWhileBusy).Post("/page-month", h.PageMonth)
			r.With(h.preventWhileBusy).Post("/select-month", h.SelectWholeMonth)
		})

		r.With(h.selectionSession).Post("/conflicts/check", h.CheckConflicts)

		r.Route("/assignments", func(r chi.Router) {
			r.Use(h.selectionSession)
			r.Use(h.preventWhileBusy)
			r.Post("/", h.ConfirmAssignment)
			r.Post("/remove", h.RemoveAssignment)
			r.Post("/reassign", h.ReassignStaff)
		})
	})
}
