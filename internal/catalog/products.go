package catalog

import "github.com/ajinkyamaster/storefront/internal/domain"

// DemoProducts is the catalog the seed command loads.
func DemoProducts() []domain.Product {
	return []domain.Product{
		{
			Name:        "Wireless Headphones",
			Price:       79.99,
			Image:       "/images/wireless-headphones.jpg",
			Description: "High-quality wireless headphones with noise cancellation",
		},
		{
			Name:        "USB-C Cable",
			Price:       12.99,
			Image:       "/images/usb-c-cable.jpg",
			Description: "Durable USB-C charging and data cable",
		},
		{
			Name:        "Portable Charger",
			Price:       34.99,
			Image:       "/images/portable-charger.jpg",
			Description: "20000mAh portable power bank",
		},
		{
			Name:        "Wireless Mouse",
			Price:       24.99,
			Image:       "/images/wireless-mouse.jpg",
			Description: "Ergonomic wireless mouse with precision tracking",
		},
		{
			Name:        "Phone Stand",
			Price:       14.99,
			Image:       "/images/phone-stand.jpg",
			Description: "Adjustable phone stand for desk",
		},
		{
			Name:        "Screen Protector",
			Price:       9.99,
			Image:       "/images/screen-protector.jpg",
			Description: "Tempered glass screen protector",
		},
	}
}
