package middleware

import (
	"log"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	hstsValue       = "max-age=2592000"
)

// statusRecorder запоминает код ответа и был ли ответ уже начат
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.written {
		rec.status = code
		rec.written = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.written {
		rec.status = http.StatusOK
		rec.written = true
	}
	return rec.ResponseWriter.Write(b)
}

// Flush нужен для SSE потока комментариев
func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// RequestLogger пишет строку лога на каждый запрос с request id
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf("[%s] %s %s -> %d (%s)", requestID, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// errorStatusWriter отдает 500 независимо от того, что выставит страница ошибки
type errorStatusWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *errorStatusWriter) WriteHeader(int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(http.StatusInternalServerError)
}

func (w *errorStatusWriter) Write(b []byte) (int, error) {
	w.WriteHeader(http.StatusInternalServerError)
	return w.ResponseWriter.Write(b)
}

// ExceptionHandler перехватывает панику. В Development текст паники отдается клиенту,
// иначе запрос повторно выполняется на errorPath с кодом 500.
func ExceptionHandler(development bool, errorPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				log.Printf("Паника при обработке %s %s: %v", r.Method, r.URL.Path, err)
				if rec.written {
					// ответ уже начат, заменить его нельзя
					return
				}

				if development || errorPath == "" {
					http.Error(w, "Internal Server Error: "+toString(err), http.StatusInternalServerError)
					return
				}
				reExecute(next, w, r, errorPath)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

func reExecute(next http.Handler, w http.ResponseWriter, r *http.Request, errorPath string) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("Паника на странице ошибки %s: %v", errorPath, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}()

	errReq := r.Clone(r.Context())
	errReq.Method = http.MethodGet
	errReq.URL.Path = errorPath
	errReq.URL.RawPath = ""
	errReq.URL.RawQuery = ""
	errReq.Body = http.NoBody
	errReq.ContentLength = 0

	w.Header().Set("Cache-Control", "no-cache, no-store")
	next.ServeHTTP(&errorStatusWriter{ResponseWriter: w}, errReq)
}

func toString(v interface{}) string {
	switch e := v.(type) {
	case error:
		return e.Error()
	case string:
		return e
	default:
		return "unexpected panic"
	}
}

// HSTS добавляет Strict-Transport-Security к HTTPS ответам
func HSTS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", hstsValue)
		}
		next.ServeHTTP(w, r)
	})
}

// HTTPSRedirection перенаправляет HTTP запросы на httpsPort. Порт 0 отключает редирект.
func HTTPSRedirection(httpsPort int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if httpsPort == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS != nil {
				next.ServeHTTP(w, r)
				return
			}

			host := r.Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			if httpsPort != 443 {
				host = net.JoinHostPort(host, strconv.Itoa(httpsPort))
			}

			target := "https://" + host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
		})
	}
}

// StaticFiles отдает существующие файлы из dir, остальные запросы идут дальше.
// Если каталога нет, этап пропускается.
func StaticFiles(dir string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if dir == "" {
			return next
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return next
		}

		files := http.FileServer(http.Dir(dir))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
			info, err := os.Stat(name)
			if err != nil || info.IsDir() {
				next.ServeHTTP(w, r)
				return
			}
			files.ServeHTTP(w, r)
		})
	}
}

// Scoped открывает BlogContext на время запроса и закрывает его после ответа
func Scoped(factory storage.Factory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bc := factory.NewContext(r.Context())
			defer func() {
				if err := bc.Close(); err != nil {
					log.Printf("Ошибка при закрытии контекста БД: %v", err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(storage.WithBlogContext(r.Context(), bc)))
		})
	}
}

// Chain применяет middleware в порядке перечисления: первый - самый внешний
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
