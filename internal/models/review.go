package models

import "time"

type Review struct {
	ID         int       `json:"id"`
	ProductID  int       `json:"product_id"`
	CustomerID int64     `json:"customer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
