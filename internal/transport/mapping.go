package transport

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
)

const unknownProduct = "Unknown"

func Product(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		UaName:      p.UaName,
		EnName:      p.EnName,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Count:       p.Count,
		Likes:       p.Likes,
		Image:       p.Image,
		Size:        p.Size,
		Color:       p.Color,
	}
}

func Products(ps []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i, p := range ps {
		out[i] = Product(p)
	}
	return out
}

func PagedProducts(r catalog.PagedResult[models.Product]) PagedProductsResponse {
	return PagedProductsResponse{
		Data:       Products(r.Data),
		TotalCount: r.TotalCount,
		Page:       r.Page,
		PageSize:   r.PageSize,
		TotalPages: r.TotalPages(),
	}
}

func SearchResult(r search.Result) SearchResponse {
	items := r.Items
	if items == nil {
		items = []search.Document{}
	}
	return SearchResponse{Total: r.Total, Items: items}
}

// ProductInput converts a form that already passed validation.
func (f ProductForm) ProductInput() (service.ProductInput, error) {
	var fe service.FieldErrors
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		fe.Add("price", "must be a non-negative decimal number")
	}
	category, err := models.ParseCategory(f.Category)
	if err != nil {
		fe.Add("category", "unknown category")
	}
	size, err := models.ParseSize(f.Size)
	if err != nil {
		fe.Add("size", "unknown size")
	}
	color, err := models.ParseColor(f.Color)
	if err != nil {
		fe.Add("color", "unknown color")
	}
	if err := fe.Err(); err != nil {
		return service.ProductInput{}, err
	}
	return service.ProductInput{
		UaName:      f.UaName,
		EnName:      f.EnName,
		Description: f.Description,
		Price:       price,
		Category:    category,
		Size:        size,
		Color:       color,
		Count:       f.Count,
		Image:       f.Image,
	}, nil
}

func User(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin, Image: u.Image, TgTag: u.TgTag}
}

func (r RegisterRequest) RegisterInput() service.RegisterInput {
	return service.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password, Image: r.Image, TgTag: r.TgTag}
}

func (r UpdateUserRequest) UpdateInput() service.UpdateUserInput {
	in := service.UpdateUserInput{Name: r.Name, Email: r.Email, TgTag: &r.TgTag}
	if strings.TrimSpace(r.Image) != "" {
		in.Image = &r.Image
	}
	return in
}

func Login(res *service.LoginResult) LoginResponse {
	return LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		UserID:    res.User.ID,
		IsAdmin:   res.User.IsAdmin,
		Name:      res.User.Name,
		Email:     res.User.Email,
	}
}

func (r OrderRequest) OrderInput() service.CreateOrderInput {
	lines := make([]service.OrderLineInput, len(r.Products))
	for i, l := range r.Products {
		lines[i] = service.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return service.CreateOrderInput{TgTag: r.TgTag, Price: r.Price, Products: lines}
}

func Order(o *models.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.OrderProducts))
	for i, l := range o.OrderProducts {
		name := unknownProduct
		if l.Product != nil && l.Product.EnName != "" {
			name = l.Product.EnName
		}
		lines[i] = OrderLineResponse{ProductID: l.ProductID, ProductName: name, Quantity: l.Quantity, PriceAtTime: l.PriceAtTime}
	}
	return OrderResponse{
		ID:            o.ID,
		TgTag:         o.TgTag,
		Price:         o.Price,
		UserID:        o.UserID,
		CreatedAt:     o.CreatedAt.UTC(),
		OrderProducts: lines,
	}
}

func Orders(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = Order(&orders[i])
	}
	return out
}
