package api

import (
	"time"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/notification"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/review"
	"github.com/xenking/storefront/internal/domain/user"
)

// Request inputs, one typed struct per operation. Inputs are validated at
// this boundary before anything reaches the services.

type productInput struct {
	ID string `json:"id"`
}

type productsInput struct {
	Category string `json:"category,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type registerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addToCartInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type removeFromCartInput struct {
	ProductID string `json:"productId"`
}

type addressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type createOrderInput struct {
	Address addressInput `json:"address"`
}

type orderInput struct {
	ID string `json:"id"`
}

type updateOrderStatusInput struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type createReviewInput struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type updateReviewInput struct {
	ReviewID string `json:"reviewId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type deleteReviewInput struct {
	ReviewID string `json:"reviewId"`
}

type productReviewsInput struct {
	ProductID string `json:"productId"`
}

type userReviewsInput struct {
	UserID string `json:"userId"`
}

type markNotificationReadInput struct {
	NotificationID string `json:"notificationId"`
}

// Response views. Views carry only what clients may see; password hashes and
// other internals never cross this boundary.

type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type authView struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type categoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type productView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         string   `json:"price"`
	CategoryID    string   `json:"categoryId"`
	Image         string   `json:"image"`
	Stock         int      `json:"stock"`
	AverageRating *float64 `json:"averageRating,omitempty"`
}

type cartLineView struct {
	Product  *productView `json:"product"`
	Quantity int          `json:"quantity"`
}

type cartView struct {
	UserID string         `json:"userId"`
	Lines  []cartLineView `json:"lines"`
}

type orderItemView struct {
	Product     *productView `json:"product"`
	Quantity    int          `json:"quantity"`
	PriceAtTime string       `json:"priceAtTime"`
}

type addressView struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type orderView struct {
	ID              string          `json:"id"`
	Items           []orderItemView `json:"items"`
	Total           string          `json:"total"`
	ShippingAddress addressView     `json:"shippingAddress"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type reviewView struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type notificationView struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// View constructors.

func newUserView(u *user.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func newCategoryView(c catalog.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Description: c.Description}
}

func newProductView(p catalog.Product) *productView {
	return &productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		CategoryID:  p.CategoryID,
		Image:       p.Image,
		Stock:       p.Stock,
	}
}

func newOrderView(o *order.Order, products map[string]catalog.Product) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, item := range o.Items {
		var pv *productView
		if p, ok := products[item.ProductID]; ok {
			pv = newProductView(p)
		}
		items[i] = orderItemView{
			Product:     pv,
			Quantity:    item.Quantity,
			PriceAtTime: item.PriceAtTime.StringFixed(2),
		}
	}
	return orderView{
		ID:    o.ID,
		Items: items,
		Total: o.Total.StringFixed(2),
		ShippingAddress: addressView{
			Street:     o.ShippingAddress.Street,
			City:       o.ShippingAddress.City,
			Province:   o.ShippingAddress.Province,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func newReviewView(r *review.Review) reviewView {
	return reviewView{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func newNotificationView(n notification.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
