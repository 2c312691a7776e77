package models

// Customer is a buyer. It cannot be deleted while a Sale references it.
type Customer struct {
	ID    uint   `gorm:"primaryKey"                          json:"id"`
	UUID  string `gorm:"column:uuid;size:36;uniqueIndex;not null" json:"uuid"`
	Name  string `gorm:"column:nombre;size:255;not null"      json:"nombre"`
	Email string `gorm:"size:255;uniqueIndex;not null"        json:"email"`
	RUT   string `gorm:"column:rut;size:20;uniqueIndex;not null" json:"rut"`
	Timestamps
}

func (Customer) TableName() string { return "clientes" }
