package api

import (
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/handlers"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceOperation = "ecommerce-api"

type Handlers struct {
	User *handlers.UserHandler
	Item *handlers.ItemHandler
	Cart *handlers.CartHandler
}

// NewRouter registers every route and wraps the mux with tracing, request
// logging and metrics, outermost first.
func NewRouter(h Handlers, auth *middleware.AuthMiddleware, healthHandler http.Handler) http.Handler {

	routerMux := http.NewServeMux()

	// Users
	routerMux.HandleFunc("POST /users", h.User.Register())
	routerMux.HandleFunc("POST /users/login", h.User.Login())
	routerMux.HandleFunc("POST /users/logout", auth.Authenticate(h.User.Logout()))
	routerMux.HandleFunc("POST /users/logoutAll", auth.Authenticate(h.User.LogoutAll()))

	// Items
	routerMux.HandleFunc("POST /items", auth.Authenticate(h.Item.CreateItem()))
	routerMux.HandleFunc("GET /items", h.Item.ListItems())
	routerMux.HandleFunc("GET /items/{id}", auth.Authenticate(h.Item.GetItem()))
	routerMux.HandleFunc("PATCH /items/{id}", auth.Authenticate(h.Item.UpdateItem()))
	routerMux.HandleFunc("DELETE /items/{id}", auth.Authenticate(h.Item.DeleteItem()))

	// Cart
	routerMux.HandleFunc("GET /cart", auth.Authenticate(h.Cart.GetCart()))
	routerMux.HandleFunc("POST /cart", auth.Authenticate(h.Cart.AddItem()))
	routerMux.HandleFunc("DELETE /cart", auth.Authenticate(h.Cart.RemoveItem()))

	// Ops
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler)

	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, serviceOperation)

	return handler
}
