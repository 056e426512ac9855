package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/billing"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/application/usecase"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/ventas-pos/internal/interfaces/http"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// ── Servidor de prueba sobre el almacenamiento en memoria ───────────────────

type testServer struct {
	app    *fiber.App
	admin  string // token SUPER_ADMIN
	seller string // token VENDEDOR
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()
	store := memory.NewSeeded()
	formatter := money.NewFormatter(money.DefaultLocale)
	hasher, err := auth.NewPasswordHasher("plain")
	require.NoError(t, err)

	userUC := usecase.NewUserUseCase(store.Users(), hasher, log)
	created, err := userUC.Bootstrap(ctx, "root", "root123", "root@tienda.com")
	require.NoError(t, err)
	require.True(t, created)
	_, err = userUC.Create(ctx, entity.RoleSuperAdmin, dto.CreateUserRequest{
		Username: "caja1", Password: "caja123", Name: "Caja 1", Email: "caja1@tienda.com", Role: "VENDEDOR",
	})
	require.NoError(t, err)

	saleQuery := sales.NewSaleQueryUseCase(store.Sales(), time.Local)
	reportUC := usecase.NewReportUseCase(store.Reports(), store.Products(), saleQuery, nil, formatter, 5, log)
	process := sales.NewProcessSaleUseCase(store, store.Products(), store.Users(), 5, log, reportUC)
	invoiceUC := billing.NewInvoiceUseCase(store.Sales(), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(store.Users(), hasher, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, log),
		ProductUC:   usecase.NewProductUseCase(store.Products(), formatter, 5, log),
		UserUC:      userUC,
		ReportUC:    reportUC,
		ProcessSale: process,
		SaleQuery:   saleQuery,
		InvoiceUC:   invoiceUC,
		PDFUC:       billing.NewPDFUseCase(invoiceUC, pdf.NewMarotoPDFGenerator(formatter)),
		Formatter:   formatter,
		Location:    time.Local,
		JWTSecret:   testJWTSecret,
		Logger:      log,
	})

	s := &testServer{app: app}
	s.admin = s.login(t, "root", "root123")
	s.seller = s.login(t, "caja1", "caja123")
	return s
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

// do envía body como JSON (o tal cual si es string) y devuelve la respuesta y el cuerpo leído.
func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	contentType := fiber.MIMEApplicationJSON
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
		contentType = "text/csv"
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, out
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func cart(lines ...dto.CartLineRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{Items: lines}
}

// ── Tests ──────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "caja1", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[dto.ErrorResponse](t, body).Code)

	resp, _ = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "caja1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_DevuelvePermisosDelRol(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "caja1", Password: "caja123"})
	out := decode[dto.LoginResponse](t, body)
	assert.Equal(t, "VENDEDOR", out.User.Role)
	assert.ElementsMatch(t, []string{"PROCESAR_VENTAS", "CONSULTAR_DATOS"}, out.Permissions)
}

func TestSales_CheckoutDescuentaInventario(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/sales", s.seller, cart(
		dto.CartLineRequest{Code: "P001", Quantity: 2},
		dto.CartLineRequest{Code: "P003", Quantity: 1},
	))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	sale := decode[dto.SaleResponse](t, body)
	assert.Equal(t, int64(1), sale.ID)
	assert.Equal(t, "15400", sale.Total.String())
	assert.Equal(t, "Caja 1", sale.SellerName)
	assert.Len(t, sale.Items, 2)

	_, body = s.do(t, http.MethodGet, "/api/products/code/P001", s.seller, nil)
	assert.Equal(t, 118, decode[dto.ProductResponse](t, body).Quantity)

	_, body = s.do(t, http.MethodGet, "/api/sales/today", s.seller, nil)
	today := decode[dto.DailyTotalResponse](t, body)
	assert.Equal(t, 1, today.Count)
	assert.Equal(t, "15400", today.Total.String())
}

func TestSales_StockInsuficienteNoDescuentaNada(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/sales", s.seller, cart(
		dto.CartLineRequest{Code: "P001", Quantity: 1},
		dto.CartLineRequest{Code: "P005", Quantity: 10},
	))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errBody struct {
		Code    string                `json:"code"`
		Details dto.StockErrorDetails `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, "P005", errBody.Details.Code)
	assert.Equal(t, 4, errBody.Details.Available)
	assert.Equal(t, 10, errBody.Details.Requested)

	_, body = s.do(t, http.MethodGet, "/api/products/code/P001", s.seller, nil)
	assert.Equal(t, 120, decode[dto.ProductResponse](t, body).Quantity)

	_, body = s.do(t, http.MethodGet, "/api/sales", s.seller, nil)
	assert.Empty(t, decode[[]dto.SaleResponse](t, body))
}

func TestSales_ProductoInexistente(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/sales", s.seller, cart(dto.CartLineRequest{Code: "NOPE", Quantity: 1}))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PRODUCT_UNAVAILABLE", decode[dto.ErrorResponse](t, body).Code)
}

func TestSales_CarritoVacio(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/sales", s.seller, cart())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, body).Code)
}

func TestSales_ValidateNoTocaInventario(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/sales/validate", s.seller, cart(
		dto.CartLineRequest{Code: "P002", Quantity: 2},
		dto.CartLineRequest{Code: "P002", Quantity: 1},
	))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	out := decode[dto.ValidateCartResponse](t, body)
	assert.True(t, out.Valid)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, 3, out.Lines[0].Quantity)
	assert.Equal(t, 40, out.Lines[0].Available)
	assert.Equal(t, "37500", out.Total.String())

	_, body = s.do(t, http.MethodGet, "/api/products/code/P002", s.seller, nil)
	assert.Equal(t, 40, decode[dto.ProductResponse](t, body).Quantity)
}

func TestSales_FacturaYPDF(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/sales", s.seller, cart(
		dto.CartLineRequest{Code: "P001", Quantity: 2},
		dto.CartLineRequest{Code: "P003", Quantity: 1},
	))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	in := dto.InvoiceRequest{CustomerName: "Ana Gómez", CustomerDocument: "1020304050"}
	resp, body = s.do(t, http.MethodPost, "/api/sales/1/invoice", s.seller, in)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	inv := decode[dto.InvoiceResponse](t, body)
	assert.Equal(t, "15400", inv.Subtotal.String())
	assert.Equal(t, "2926", inv.Tax.String())
	assert.Equal(t, "18326", inv.Total.String())

	resp, body = s.do(t, http.MethodPost, "/api/sales/1/invoice.pdf", s.seller, in)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "factura_")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, _ = s.do(t, http.MethodPost, "/api/sales/99/invoice", s.seller, in)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/sales/1/invoice", s.seller, dto.InvoiceRequest{CustomerName: "Ana"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSales_EliminarRequiereGestionarProductos(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodPost, "/api/sales", s.seller, cart(dto.CartLineRequest{Code: "P004", Quantity: 1}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/sales/1", s.seller, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/sales/1", s.admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/sales/1", s.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSales_ListaPorFechaInvalida(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodGet, "/api/sales?date=09-03-2024", s.seller, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_DATE", decode[dto.ErrorResponse](t, body).Code)
}

func TestProducts_PermisosYPrecioRegional(t *testing.T) {
	s := newTestServer(t)
	in := map[string]any{
		"code": "P100", "name": "Azúcar Manuelita 1kg", "price": "12.500,00", "quantity": 10, "category": "Despensa",
	}

	resp, _ := s.do(t, http.MethodPost, "/api/products", s.seller, in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/products", s.admin, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	p := decode[dto.ProductResponse](t, body)
	assert.Equal(t, "12500", p.Price.String())

	resp, body = s.do(t, http.MethodPost, "/api/products", s.admin, in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_CODE", decode[dto.ErrorResponse](t, body).Code)

	in["code"] = "P101"
	in["price"] = "doce mil"
	resp, body = s.do(t, http.MethodPost, "/api/products", s.admin, in)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_MONEY_FORMAT", decode[dto.ErrorResponse](t, body).Code)
}

func TestProducts_RestockYEliminar(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/products/6/restock", s.admin, dto.RestockRequest{Quantity: 12})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 12, decode[dto.ProductResponse](t, body).Quantity)

	resp, _ = s.do(t, http.MethodDelete, "/api/products/6", s.admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/products/code/P006", s.seller, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/products/abc", s.seller, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProducts_ListadoYStockBajo(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodGet, "/api/products?category=Despensa", s.seller, nil)
	assert.Len(t, decode[[]dto.ProductResponse](t, body), 2)

	_, body = s.do(t, http.MethodGet, "/api/products/low-stock", s.seller, nil)
	low := decode[[]dto.ProductResponse](t, body)
	require.Len(t, low, 2)
	assert.Equal(t, "P006", low[0].Code)
	assert.Equal(t, "P005", low[1].Code)

	_, body = s.do(t, http.MethodGet, "/api/products/stats", s.seller, nil)
	assert.Equal(t, "1443400", decode[dto.ProductStatsResponse](t, body).InventoryValue.String())
}

func TestProducts_ImportCSV(t *testing.T) {
	s := newTestServer(t)
	csv := "code;name;description;price;quantity;category\n" +
		"P200;Sal Refisal 500g;;1.200,00;30;Despensa\n" +
		"P201;Atún Van Camps;;x;5;Despensa\n"

	resp, body := s.do(t, http.MethodPost, "/api/products/import", s.admin, csv)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	out := decode[dto.ImportResult](t, body)
	assert.Equal(t, 1, out.Created)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, 2, out.Errors[0].Row)

	resp, _ = s.do(t, http.MethodPost, "/api/products/import", s.admin, "  ")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReports_SoloConPermiso(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodPost, "/api/sales", s.seller, cart(dto.CartLineRequest{Code: "P001", Quantity: 3}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/reports/summary", s.seller, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/api/reports/summary", s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	sum := decode[dto.SummaryResponse](t, body)
	assert.Equal(t, 1, sum.TotalSales)
	assert.Equal(t, "8400", sum.TotalRevenue.String())

	_, body = s.do(t, http.MethodGet, "/api/reports/top-products?limit=1", s.admin, nil)
	top := decode[[]dto.TopProductResponse](t, body)
	require.Len(t, top, 1)
	assert.Equal(t, "P001", top[0].Code)

	resp, _ = s.do(t, http.MethodGet, "/api/reports/range?from=2024-03-10&to=2024-03-01", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/reports/range?from=ayer", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsers_AdministracionYCambioDeClave(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/users", s.seller, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	newUser := dto.CreateUserRequest{Username: "consulta1", Password: "consulta1", Name: "Auditor", Email: "aud@tienda.com", Role: "CONSULTA"}
	resp, body := s.do(t, http.MethodPost, "/api/users", s.admin, newUser)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[dto.UserResponse](t, body)
	assert.Equal(t, "CONSULTA", created.Role)

	newUser.Username = "x!"
	resp, _ = s.do(t, http.MethodPost, "/api/users", s.admin, newUser)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = s.do(t, http.MethodGet, "/api/users?role=VENDEDOR", s.admin, nil)
	assert.Len(t, decode[[]dto.UserResponse](t, body), 1)

	resp, _ = s.do(t, http.MethodPut, "/api/users/me/password", s.seller,
		dto.ChangePasswordRequest{CurrentPassword: "mala", NewPassword: "nueva123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, "/api/users/me/password", s.seller,
		dto.ChangePasswordRequest{CurrentPassword: "caja123", NewPassword: "nueva123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	s.login(t, "caja1", "nueva123")
}
