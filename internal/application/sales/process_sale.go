package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/authz"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// ProcessSaleUseCase registra una venta: valida el carrito, inserta cabecera y líneas
// y descuenta existencias, todo dentro de una única transacción.
type ProcessSaleUseCase struct {
	txRunner          TxRunner
	productRepo       repository.ProductRepository
	userRepo          repository.UserRepository
	validator         *InventoryValidator
	listeners         []SaleListener
	lowStockThreshold int
	logger            zerolog.Logger
	now               func() time.Time
}

// NewProcessSaleUseCase construye el caso de uso. userRepo puede ser nil: en ese caso
// solo se exige que el vendedor tenga un ID persistido.
func NewProcessSaleUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	lowStockThreshold int,
	logger zerolog.Logger,
	listeners ...SaleListener,
) *ProcessSaleUseCase {
	return &ProcessSaleUseCase{
		txRunner:          txRunner,
		productRepo:       productRepo,
		userRepo:          userRepo,
		validator:         NewInventoryValidator(productRepo),
		listeners:         listeners,
		lowStockThreshold: lowStockThreshold,
		logger:            logger.With().Str("component", "sales").Logger(),
		now:               time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *ProcessSaleUseCase) SetClock(now func() time.Time) { uc.now = now }

// AddListener registra un observador de ventas confirmadas.
func (uc *ProcessSaleUseCase) AddListener(l SaleListener) {
	uc.listeners = append(uc.listeners, l)
}

// ValidateCart pre-chequeo de inventario sin efectos.
func (uc *ProcessSaleUseCase) ValidateCart(ctx context.Context, lines []entity.CartLine) ([]ResolvedLine, error) {
	return uc.validator.Validate(ctx, lines)
}

// ProcessSale registra el carrito y devuelve el ID de la venta.
// Una vez iniciado no atiende cancelaciones del llamador: termina con commit o rollback completo.
// Errores: ErrEmptyCart, ErrInvalidSeller, ErrForbidden, *domain.StockError
// (ErrProductUnavailable / ErrInsufficientStock) o ErrPersistenceFailure.
func (uc *ProcessSaleUseCase) ProcessSale(ctx context.Context, cart *entity.Sale) (int64, error) {
	ctx = context.WithoutCancel(ctx)

	// ── 1. Precondiciones ────────────────────────────────────────────────────
	if cart == nil || cart.IsEmpty() {
		return 0, domain.ErrEmptyCart
	}
	if cart.ID != 0 {
		return 0, fmt.Errorf("%w: la venta %d ya fue registrada", domain.ErrConflict, cart.ID)
	}
	seller, err := uc.checkSeller(ctx, cart.Seller)
	if err != nil {
		return 0, err
	}
	cart.Seller = seller
	cart.RecomputeTotal()

	// ── 2. Validación de inventario (solo lectura) ───────────────────────────
	resolved, err := uc.validator.Validate(ctx, cart.Lines())
	if err != nil {
		uc.logger.Info().Err(err).Int64("seller_id", seller.ID).Msg("venta rechazada en validación")
		return 0, err
	}
	productIDs := make(map[string]int64, len(resolved))
	for _, r := range resolved {
		productIDs[r.Product.Code] = r.Product.ID
	}
	for _, item := range cart.Items {
		item.ProductID = productIDs[item.ProductCode]
	}
	cart.CreatedAt = uc.now()

	// ── 3. Cabecera + líneas + descuentos, en una transacción ────────────────
	var lowStock []*entity.Product
	err = uc.txRunner.RunSale(ctx, func(productRepo repository.ProductRepository, saleRepo repository.SaleRepository) error {
		lowStock = nil
		if err := saleRepo.Create(ctx, cart); err != nil {
			return fmt.Errorf("registrar venta: %w", err)
		}
		for _, item := range cart.Items {
			ok, err := productRepo.AtomicDecrement(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("descontar stock de %s: %w", item.ProductCode, err)
			}
			if !ok {
				return stockRace(ctx, productRepo, item)
			}
		}
		for _, item := range cart.Items {
			p, err := productRepo.GetByID(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("releer producto %s: %w", item.ProductCode, err)
			}
			if p != nil && p.IsLowStock(uc.lowStockThreshold) {
				lowStock = append(lowStock, p)
			}
		}
		return nil
	})
	if err != nil {
		resetIDs(cart)
		if !isStockError(err) && !errors.Is(err, domain.ErrPersistenceFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
		}
		uc.logger.Warn().Err(err).Int64("seller_id", seller.ID).Msg("venta revertida")
		return 0, err
	}

	uc.logger.Info().
		Int64("sale_id", cart.ID).
		Int64("seller_id", seller.ID).
		Int("items", cart.ItemCount()).
		Str("total", cart.Total.StringFixed(2)).
		Msg("venta registrada")

	// ── 4. Notificaciones (fuera de la transacción) ──────────────────────────
	for _, l := range uc.listeners {
		l.SaleCommitted(ctx, cart, lowStock)
	}
	return cart.ID, nil
}

// ProcessSaleConfirmed pide confirmación antes de registrar. Si el usuario declina
// devuelve ErrSaleCancelled sin tocar el almacenamiento.
func (uc *ProcessSaleUseCase) ProcessSaleConfirmed(ctx context.Context, cart *entity.Sale, confirmer Confirmer) (int64, error) {
	if cart == nil || cart.IsEmpty() {
		return 0, domain.ErrEmptyCart
	}
	if _, err := uc.checkSeller(ctx, cart.Seller); err != nil {
		return 0, err
	}
	if confirmer != nil {
		ok, err := confirmer.Confirm(ctx, cart)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, domain.ErrSaleCancelled
		}
	}
	return uc.ProcessSale(ctx, cart)
}

// Checkout punto de entrada de la capa de presentación: arma el carrito a partir de
// pares (código, cantidad) y lo registra.
func (uc *ProcessSaleUseCase) Checkout(ctx context.Context, sellerID int64, lines []entity.CartLine) (*entity.Sale, error) {
	seller, err := uc.checkSeller(ctx, &entity.User{ID: sellerID})
	if err != nil {
		return nil, err
	}
	resolved, err := uc.validator.Validate(ctx, lines)
	if err != nil {
		return nil, err
	}
	cart := entity.NewSale(seller)
	for _, r := range resolved {
		if err := cart.AddItem(r.Product, r.Quantity); err != nil {
			return nil, err
		}
	}
	if _, err := uc.ProcessSale(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// checkSeller exige un vendedor persistido, activo y con permiso para vender.
func (uc *ProcessSaleUseCase) checkSeller(ctx context.Context, seller *entity.User) (*entity.User, error) {
	if seller == nil || seller.ID <= 0 {
		return nil, domain.ErrInvalidSeller
	}
	if uc.userRepo == nil {
		return seller, nil
	}
	u, err := uc.userRepo.GetByID(ctx, seller.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: cargar vendedor: %w", domain.ErrPersistenceFailure, err)
	}
	if u == nil || !u.Active {
		return nil, domain.ErrInvalidSeller
	}
	if !authz.CanPerform(u.Role, authz.ProcessSales) {
		return nil, fmt.Errorf("%w: el rol %s no puede procesar ventas", domain.ErrForbidden, u.Role)
	}
	clean := *u
	clean.Password = ""
	return &clean, nil
}

// stockRace la validación pasó pero otra venta ganó la carrera por el stock.
func stockRace(ctx context.Context, productRepo repository.ProductRepository, item *entity.SaleItem) error {
	p, err := productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("releer producto %s: %w", item.ProductCode, err)
	}
	if p == nil || !p.Active {
		return domain.NewProductUnavailable(item.ProductCode)
	}
	return domain.NewInsufficientStock(item.ProductCode, p.Name, p.Quantity, item.Quantity)
}

func isStockError(err error) bool {
	var se *domain.StockError
	return errors.As(err, &se)
}

func resetIDs(cart *entity.Sale) {
	cart.ID = 0
	for _, item := range cart.Items {
		item.ID = 0
		item.SaleID = 0
	}
}
