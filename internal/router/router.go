package router

import (
	"time"

	"tallerpos/internal/backend"
	"tallerpos/internal/cache"
	"tallerpos/internal/config"
	"tallerpos/internal/handler"
	"tallerpos/internal/middleware"
	"tallerpos/internal/repository"
	"tallerpos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-level resources the router wires into services.
// Rdb may be nil: terminal state then lives in memory and lookups are not cached.
type Deps struct {
	DB      *gorm.DB
	Rdb     *redis.Client
	Backend *backend.Client
	Limiter *middleware.RateLimiter
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← (Backend client | TerminalStore | Journal)
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	// ── Storage ──────────────────────────────────────────────────────────────
	var (
		store  repository.TerminalStore
		lookup cache.LookupCache = cache.NoopLookupCache{}
	)
	if d.Rdb != nil {
		store = repository.NewRedisTerminalStore(d.Rdb, cfg.TerminalStateTTL())
		lookup = cache.NewRedisLookupCache(d.Rdb)
	} else {
		store = repository.NewMemoryTerminalStore(cfg.TerminalStateTTL())
	}
	journal := repository.NewJournalRepository(d.DB)
	locks := service.NewTerminalLocks()

	// ── Services ─────────────────────────────────────────────────────────────
	sym := cfg.CurrencySymbol
	cajaSvc := service.NewCajaService(d.Backend, sym, cfg.CajaHistorialDias)
	catalogoSvc := service.NewCatalogoService(d.Backend, lookup, cfg.LookupCacheTTL())
	clienteSvc := service.NewClienteService(d.Backend)
	carritoSvc := service.NewCarritoService(store, catalogoSvc, clienteSvc, locks, sym)
	ventaSvc := service.NewVentaService(d.Backend, cajaSvc, store, journal, locks, sym)
	reembolsoSvc := service.NewReembolsoService(d.Backend, d.Backend, cajaSvc, store, journal, locks, sym)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cajaH := handler.NewCajaHandler(cajaSvc)
	carritoH := handler.NewCarritoHandler(carritoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc, carritoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	reembolsosH := handler.NewReembolsosHandler(reembolsoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Rdb, d.Backend))

	// Every /v1 route forwards the caller's bearer token to the backend.
	v1 := r.Group("/v1", middleware.Credential())
	{
		caja := v1.Group("/caja")
		{
			caja.GET("/actual", cajaH.Actual)
			caja.POST("/abrir", cajaH.Abrir)
			caja.POST("/cerrar", cajaH.Cerrar)
			caja.GET("/historial", cajaH.Historial)
		}

		clientes := v1.Group("/clientes")
		{
			clientes.GET("", clientesH.Listar)
			clientes.GET("/nit/:nit", clientesH.BuscarPorNIT)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", clientesH.Eliminar)
		}
		v1.GET("/ventas/:id/comprobante", ventasH.Comprobante)
		v1.GET("/reembolsos/ventas", reembolsosH.VentasReembolsables)

		// Routes below address one till's cart or refund staging.
		term := v1.Group("", middleware.Terminal())
		{
			carrito := term.Group("/carrito")
			{
				carrito.GET("", carritoH.Obtener)
				carrito.DELETE("", carritoH.Cancelar)
				carrito.POST("/items", carritoH.Escanear)
				carrito.PUT("/items/:tipo/:id", carritoH.CambiarCantidad)
				carrito.DELETE("/items/:tipo/:id", carritoH.Quitar)
				carrito.PUT("/cliente", carritoH.AsignarCliente)
				carrito.DELETE("/cliente", carritoH.QuitarCliente)
			}

			term.POST("/clientes", clientesH.Crear)

			term.POST("/ventas/validar", ventasH.Validar)
			term.POST("/ventas", ventasH.Registrar)
			term.GET("/ventas/recientes", ventasH.Recientes)

			reemb := term.Group("/reembolsos")
			{
				reemb.POST("", reembolsosH.Registrar)
				reemb.GET("/recientes", reembolsosH.Recientes)
				reemb.POST("/seleccion", reembolsosH.Seleccionar)
				reemb.GET("/seleccion", reembolsosH.Obtener)
				reemb.DELETE("/seleccion", reembolsosH.Descartar)
				reemb.PUT("/seleccion/items/:id_detalle", reembolsosH.Preparar)
			}
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// DefaultLimiter is the per-terminal budget used by the server binary.
func DefaultLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(600, time.Minute, middleware.ByTerminal)
}
