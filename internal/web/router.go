package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/VitaminP8/blogapp/internal/subscription"
	"github.com/gorilla/mux"
)

const (
	defaultController = "home"
	defaultAction     = "index"
)

type Options struct {
	// JWTSecret включает авторизацию для изменяющих действий и выдачу токенов
	JWTSecret   string
	TokenTTL    time.Duration
	Development bool
	// Subscriptions получает новые комментарии для Comments/Stream
	Subscriptions subscription.Manager
}

type action struct {
	methods []string
	handler http.HandlerFunc
}

// Server держит зависимости контроллеров. BlogContext каждый обработчик берет из запроса.
type Server struct {
	opts        Options
	controllers map[string]map[string]action
}

// NewRouter строит маршрут /{controller=Home}/{action=Index}/{id?}.
// Имена контроллеров и действий не чувствительны к регистру.
func NewRouter(opts Options) *mux.Router {
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 72 * time.Hour
	}
	if opts.Subscriptions == nil {
		opts.Subscriptions = subscription.NewSubscriptionManager()
	}

	s := &Server{opts: opts}
	s.controllers = map[string]map[string]action{
		"home": {
			"index": {methods: []string{http.MethodGet}, handler: s.homeIndex},
			"error": {methods: []string{http.MethodGet}, handler: s.homeError},
		},
		"posts": {
			"index":   {methods: []string{http.MethodGet}, handler: s.postsIndex},
			"details": {methods: []string{http.MethodGet}, handler: s.postsDetails},
			"create":  {methods: []string{http.MethodPost}, handler: s.postsCreate},
			"edit":    {methods: []string{http.MethodPost, http.MethodPut}, handler: s.postsEdit},
			"delete":  {methods: []string{http.MethodPost, http.MethodDelete}, handler: s.postsDelete},
		},
		"comments": {
			"index":   {methods: []string{http.MethodGet}, handler: s.commentsIndex},
			"details": {methods: []string{http.MethodGet}, handler: s.commentsDetails},
			"create":  {methods: []string{http.MethodPost}, handler: s.commentsCreate},
			"edit":    {methods: []string{http.MethodPost, http.MethodPut}, handler: s.commentsEdit},
			"delete":  {methods: []string{http.MethodPost, http.MethodDelete}, handler: s.commentsDelete},
			"stream":  {methods: []string{http.MethodGet}, handler: s.commentsStream},
		},
		"account": {
			"register": {methods: []string{http.MethodPost}, handler: s.accountRegister},
			"login":    {methods: []string{http.MethodPost}, handler: s.accountLogin},
			"me":       {methods: []string{http.MethodGet}, handler: s.accountMe},
		},
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.dispatch)
	router.HandleFunc("/{controller}", s.dispatch)
	router.HandleFunc("/{controller}/{action}", s.dispatch)
	router.HandleFunc("/{controller}/{action}/{id}", s.dispatch)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "page not found"})
	})
	return router
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	controller := strings.ToLower(vars["controller"])
	if controller == "" {
		controller = defaultController
	}
	name := strings.ToLower(vars["action"])
	if name == "" {
		name = defaultAction
	}

	act, ok := s.controllers[controller][name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "page not found"})
		return
	}

	for _, m := range act.methods {
		if r.Method == m || (r.Method == http.MethodHead && m == http.MethodGet) {
			act.handler(w, r)
			return
		}
	}
	w.Header().Set("Allow", strings.Join(act.methods, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
