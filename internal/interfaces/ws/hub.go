package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// Tipos de evento publicados a los clientes.
const (
	EventSale     = "sale"
	EventLowStock = "low_stock"
)

// Event mensaje JSON enviado por el websocket.
type Event struct {
	Type     string                `json:"type"`
	Sale     *dto.SaleResponse     `json:"sale,omitempty"`
	LowStock []dto.ProductResponse `json:"low_stock,omitempty"`
}

// Hub difunde ventas confirmadas y alertas de stock bajo a los clientes conectados.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.Mutex
	formatter  *money.Formatter
	log        zerolog.Logger
}

var _ sales.SaleListener = (*Hub)(nil)

// NewHub crea el hub. buffer es la cantidad de mensajes pendientes antes de descartar.
func NewHub(formatter *money.Formatter, buffer int, log zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, buffer),
		done:       make(chan struct{}),
		formatter:  formatter,
		log:        log.With().Str("component", "ws").Logger(),
	}
}

// Run atiende registros y difusiones hasta que ctx termina; luego cierra todas las conexiones.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.done) })
			h.mutex.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug().Msg("cliente ws conectado")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// join registra conn; devuelve false si el hub ya se detuvo.
func (h *Hub) join(conn *websocket.Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// leave saca conn del hub. Tras detenerse Run ya cerró todas las conexiones.
func (h *Hub) leave(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Clients número de conexiones activas.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// SaleCommitted publica la venta y, si los hay, los productos con stock bajo.
// Nunca bloquea al caso de uso: con el buffer lleno el evento se descarta.
func (h *Hub) SaleCommitted(_ context.Context, sale *entity.Sale, lowStock []*entity.Product) {
	events := []Event{{Type: EventSale, Sale: dto.ToSaleResponse(sale, h.formatter)}}
	if len(lowStock) > 0 {
		events = append(events, Event{Type: EventLowStock, LowStock: dto.ToProductList(lowStock, h.formatter)})
	}
	for _, ev := range events {
		msg, err := json.Marshal(ev)
		if err != nil {
			h.log.Error().Err(err).Str("type", ev.Type).Msg("no se pudo serializar evento")
			continue
		}
		select {
		case h.broadcast <- msg:
		default:
			h.log.Warn().Str("type", ev.Type).Msg("buffer ws lleno, evento descartado")
		}
	}
}

// Upgrade rechaza con 426 lo que no sea un handshake websocket.
func Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
}

// Handler registra la conexión y la mantiene hasta que el cliente cierra.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		if !h.join(c) {
			_ = c.Close()
			return
		}
		defer h.leave(c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
