// Package seed holds the compiled-in product catalog.
package seed

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// StaticSource serves the compiled-in catalog.
type StaticSource struct{}

func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

func (s *StaticSource) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	return Products(), nil
}

// Products returns a fresh copy of the seed.
func Products() []domain.Product {
	return []domain.Product{
		{
			ID:          1,
			Name:        "Quantum Smartphone X1",
			Description: "Experience the future of mobile technology with our revolutionary Quantum Smartphone X1. Featuring holographic display, quantum processing, and AI-powered personal assistant.",
			Price:       decimal.RequireFromString("1299.99"),
			Glyph:       "📱",
			Category:    "Electronics",
			Rating:      4.8,
			Reviews:     1245,
			Stock:       50,
			Colors:      []string{"Cosmic Black", "Stellar Silver", "Nebula Blue"},
			Features: []string{
				"Holographic 3D Display",
				"Quantum Processing Unit",
				"AI Personal Assistant",
				"Biometric Security",
				"Wireless Charging",
			},
			Specs: []domain.Spec{
				{Label: "Display", Value: `6.7" Holographic 3D`},
				{Label: "Processor", Value: "Quantum Q8"},
				{Label: "RAM", Value: "16GB"},
				{Label: "Storage", Value: "1TB"},
				{Label: "Battery", Value: "5000mAh"},
				{Label: "Camera", Value: "108MP Quad"},
			},
		},
		{
			ID:          2,
			Name:        "Neural Headset Pro",
			Description: "Connect your mind to the digital world with our advanced Neural Headset Pro. Experience virtual reality like never before with direct neural interface technology.",
			Price:       decimal.RequireFromString("899.99"),
			Glyph:       "🎮",
			Category:    "Gaming",
			Rating:      4.9,
			Reviews:     876,
			Stock:       30,
			Colors:      []string{"Midnight Black", "Cyber Red"},
			Features: []string{
				"Neural Interface",
				"8K Resolution",
				"Haptic Feedback",
				"Voice Control",
				"Brain-Computer Interface",
			},
			Specs: []domain.Spec{
				{Label: "Resolution", Value: "8K per eye"},
				{Label: "Refresh Rate", Value: "240Hz"},
				{Label: "Field of View", Value: "180°"},
				{Label: "Latency", Value: "<1ms"},
				{Label: "Battery Life", Value: "8 hours"},
				{Label: "Weight", Value: "350g"},
			},
		},
		{
			ID:          3,
			Name:        "Smart Home Hub Elite",
			Description: "Transform your living space into a futuristic smart home with our all-in-one Smart Home Hub Elite. Control everything with voice commands and AI automation.",
			Price:       decimal.RequireFromString("499.99"),
			Glyph:       "🏠",
			Category:    "Smart Home",
			Rating:      4.7,
			Reviews:     2341,
			Stock:       100,
			Colors:      []string{"Pearl White", "Space Gray"},
			Features: []string{
				"AI Home Assistant",
				"Voice Control",
				"Energy Management",
				"Security System",
				"Climate Control",
			},
			Specs: []domain.Spec{
				{Label: "Processor", Value: "AI Neural Engine"},
				{Label: "Connectivity", Value: "Wi-Fi 6E"},
				{Label: "Compatibility", Value: "All major platforms"},
				{Label: "Sensors", Value: "Temperature, Humidity, Motion"},
				{Label: "Voice Recognition", Value: "Multi-user"},
				{Label: "Power", Value: "AC/DC"},
			},
		},
		{
			ID:          4,
			Name:        "Drone Vision X",
			Description: "Capture stunning aerial footage with our advanced Drone Vision X. Featuring AI-powered obstacle avoidance and 8K video recording capabilities.",
			Price:       decimal.RequireFromString("799.99"),
			Glyph:       "🚁",
			Category:    "Drones",
			Rating:      4.6,
			Reviews:     567,
			Stock:       25,
			Colors:      []string{"Carbon Black", "Arctic White"},
			Features: []string{
				"8K Video Recording",
				"AI Obstacle Avoidance",
				"30km Range",
				"40min Flight Time",
				"Follow Me Mode",
			},
			Specs: []domain.Spec{
				{Label: "Camera", Value: "8K 60fps"},
				{Label: "Battery", Value: "5000mAh"},
				{Label: "Range", Value: "30km"},
				{Label: "Max Speed", Value: "72km/h"},
				{Label: "Weight", Value: "800g"},
				{Label: "Charging Time", Value: "60min"},
			},
		},
		{
			ID:          5,
			Name:        "Smart Watch Ultra",
			Description: "Stay connected and monitor your health with our feature-packed Smart Watch Ultra. Advanced health tracking and seamless smartphone integration.",
			Price:       decimal.RequireFromString("399.99"),
			Glyph:       "⌚",
			Category:    "Wearables",
			Rating:      4.5,
			Reviews:     1892,
			Stock:       75,
			Colors:      []string{"Black", "Silver", "Rose Gold"},
			Features: []string{
				"Health Monitoring",
				"Fitness Tracking",
				"Smart Notifications",
				"Water Resistant",
				"Long Battery Life",
			},
			Specs: []domain.Spec{
				{Label: "Display", Value: `1.5" AMOLED`},
				{Label: "Battery", Value: "14 days"},
				{Label: "Water Resistance", Value: "50m"},
				{Label: "Sensors", Value: "Heart Rate, SpO2, ECG"},
				{Label: "Connectivity", Value: "Bluetooth 5.2"},
				{Label: "Weight", Value: "45g"},
			},
		},
	}
}
