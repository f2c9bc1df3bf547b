package api

import (
	"net/http"

	"github.com/awsmlife/habits/internal/service"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	mx            *chi.Mux
	userService   service.UserServiceI
	habitsService service.HabitsServiceI
	ledgerService service.LedgerServiceI
	statsService  service.StatsServiceI
	jwtService    JWTServiceI
}

type ServicesList struct {
	UserService   service.UserServiceI
	HabitsService service.HabitsServiceI
	LedgerService service.LedgerServiceI
	StatsService  service.StatsServiceI
	JwtService    JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:            chi.NewMux(),
		userService:   servicesOptions.UserService,
		habitsService: servicesOptions.HabitsService,
		ledgerService: servicesOptions.LedgerService,
		statsService:  servicesOptions.StatsService,
		jwtService:    servicesOptions.JwtService,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Route("/habits", func(r chi.Router) {
				r.Get("/", s.GetHabits)
				r.Post("/", s.CreateHabit)
				r.Post("/log", s.LogCompletion)
				r.Post("/bulk-log", s.BulkLogCompletions)
				r.Get("/{id}", s.GetHabit)
				r.Put("/{id}", s.UpdateHabit)
				r.Delete("/{id}", s.DeleteHabit)
				r.Get("/{id}/completions", s.GetCompletions)
			})
			r.Get("/stats", s.GetStats)
			r.Post("/seed", s.SeedHabits)
			r.Delete("/account", s.DeleteAccount)
		})
	})
}

// Handler exposes the routed mux, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.mx
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.mx)
}
