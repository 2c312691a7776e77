package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/pkg/migration"
)

func init() {
	migration.Register("20240601000000_create_clientes_table", &createTable{model: &models.Customer{}})
	migration.Register("20240601000001_create_productos_table", &createTable{model: &models.Product{}})
	migration.Register("20240601000002_create_ventas_table", &createTable{model: &models.Sale{}})
	migration.Register("20240601000003_create_detalles_ventas_table", &createTable{model: &models.SaleLine{}})
}

// Models lists every table in dependency order. Used by AutoMigrate at
// startup and by the in-memory test databases.
func Models() []any {
	return []any{
		&models.Customer{},
		&models.Product{},
		&models.Sale{},
		&models.SaleLine{},
	}
}

type createTable struct {
	model any
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.model)
}
