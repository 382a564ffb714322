package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sales-engine/pkg"
)

// Seed populates an empty store with a demo dealership, inventory and
// financing configuration. It is a no-op when the dealership already exists.
func (s *Store) Seed(ctx context.Context) error {
	existing, err := s.GetDealership(ctx, 1)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	dealership := pkg.Dealership{
		ID:         1,
		Name:       "Northside Auto Group",
		Address:    "4210 97 Street NW",
		City:       "Edmonton",
		Province:   "AB",
		PostalCode: "T6E 5Y1",
		Phone:      "780-555-0142",
		Timezone:   "America/Edmonton",
	}

	now := time.Now()
	vehicles := []pkg.Vehicle{
		{ID: 1, DealershipID: 1, Year: 2021, Make: "Honda", Model: "Civic", Trim: "EX", PriceCents: 2649500, Mileage: 41250, ExteriorColor: "Sonic Gray", InteriorColor: "Black", Highlights: "one owner, sunroof, heated seats", CreatedAt: now},
		{ID: 2, DealershipID: 1, Year: 2022, Make: "Honda", Model: "CR-V", Trim: "Sport", PriceCents: 3489500, Mileage: 28900, ExteriorColor: "Crystal Black", InteriorColor: "Gray", Highlights: "AWD, remote start", CreatedAt: now},
		{ID: 3, DealershipID: 1, Year: 2020, Make: "Toyota", Model: "Corolla", Trim: "LE", PriceCents: 2199500, Mileage: 62300, ExteriorColor: "Classic Silver", InteriorColor: "Black", Highlights: "new tires, clean history", CreatedAt: now},
		{ID: 4, DealershipID: 1, Year: 2021, Make: "Toyota", Model: "RAV4", Trim: "XLE", PriceCents: 3299500, Mileage: 45100, ExteriorColor: "Blueprint", InteriorColor: "Black", Highlights: "AWD, power liftgate", CreatedAt: now},
		{ID: 5, DealershipID: 1, Year: 2019, Make: "Ford", Model: "F-150", Trim: "XLT", PriceCents: 3899500, Mileage: 88400, ExteriorColor: "Oxford White", InteriorColor: "Gray", Highlights: "4x4, tow package", CreatedAt: now},
		{ID: 6, DealershipID: 1, Year: 2023, Make: "Hyundai", Model: "Elantra", Trim: "Preferred", PriceCents: 2549500, Mileage: 18700, ExteriorColor: "Intense Blue", InteriorColor: "Black", Highlights: "factory warranty remaining", CreatedAt: now},
		{ID: 7, DealershipID: 1, Year: 2020, Make: "Mazda", Model: "CX-5", Trim: "GS", PriceCents: 2799500, Mileage: 54600, ExteriorColor: "Soul Red", InteriorColor: "Black", Highlights: "AWD, heated steering wheel", CreatedAt: now},
		{ID: 8, DealershipID: 1, Year: 2018, Make: "Chevrolet", Model: "Equinox", Trim: "LT", PriceCents: 1899500, Mileage: 97200, ExteriorColor: "Summit White", InteriorColor: "Jet Black", Highlights: "recent brakes", CreatedAt: now},
	}

	tiers := []pkg.CreditTier{
		{ID: 1, DealershipID: 1, Name: "Excellent", MinScore: 750, MaxScore: 900, AnnualRateBps: 499, IsActive: true},
		{ID: 2, DealershipID: 1, Name: "Good", MinScore: 680, MaxScore: 749, AnnualRateBps: 699, IsActive: true},
		{ID: 3, DealershipID: 1, Name: "Fair", MinScore: 600, MaxScore: 679, AnnualRateBps: 999, IsActive: true},
		{ID: 4, DealershipID: 1, Name: "Rebuilding", MinScore: 300, MaxScore: 599, AnnualRateBps: 1499, IsActive: true},
	}

	rules := []pkg.ModelYearTermRule{
		{ID: 1, DealershipID: 1, MinModelYear: 2021, MaxModelYear: 2030, TermsCSV: "36,48,60,72,84", IsActive: true},
		{ID: 2, DealershipID: 1, MinModelYear: 2017, MaxModelYear: 2020, TermsCSV: "36,48,60,72", IsActive: true},
	}

	fees := []pkg.DealershipFee{
		{ID: 1, DealershipID: 1, Name: "Documentation", Amount: 59900, IsPercentage: false, IncludeInPayment: true, IsActive: true, DisplayOrder: 1},
		{ID: 2, DealershipID: 1, Name: "AMVIC Levy", Amount: 1250, IsPercentage: false, IncludeInPayment: true, IsActive: true, DisplayOrder: 2},
		{ID: 3, DealershipID: 1, Name: "Protection Package", Amount: 150, IsPercentage: true, IncludeInPayment: true, IsActive: true, DisplayOrder: 3},
	}

	settings := pkg.AiPersonalitySettings{
		DealershipID:     1,
		Tone:             "friendly",
		ResponseLength:   "medium",
		Personality:      "A helpful, low-pressure product specialist who knows the local market.",
		AlwaysInclude:    []string{"offer to book a test drive"},
		NeverSay:         []string{"final price", "guaranteed approval"},
		BusinessHours:    "Mon-Sat 9am-7pm, closed Sundays",
		GreetingTemplate: "Thanks for reaching out to {{dealershipName}}!",
		Enabled:          true,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dealership).Error; err != nil {
			return fmt.Errorf("seeding dealership: %w", err)
		}
		if err := tx.Create(&vehicles).Error; err != nil {
			return fmt.Errorf("seeding vehicles: %w", err)
		}
		if err := tx.Create(&tiers).Error; err != nil {
			return fmt.Errorf("seeding credit tiers: %w", err)
		}
		if err := tx.Create(&rules).Error; err != nil {
			return fmt.Errorf("seeding term rules: %w", err)
		}
		if err := tx.Create(&fees).Error; err != nil {
			return fmt.Errorf("seeding fees: %w", err)
		}
		if err := tx.Create(&settings).Error; err != nil {
			return fmt.Errorf("seeding ai settings: %w", err)
		}
		return nil
	})
}
