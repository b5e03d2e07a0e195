package models

// All lists the persisted models in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Batch{},
		&Order{},
		&OrderItem{},
		&Prescription{},
	}
}
