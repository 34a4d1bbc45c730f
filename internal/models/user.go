package models

import "time"

// Account представляет учетную запись администратора в системе
type Account struct {
	ID           string     `json:"id"`                   // UUID учетной записи
	Username     string     `json:"username"`             // уникальный username
	Email        string     `json:"email"`                // уникальный email
	PasswordHash string     `json:"-"`                    // PBKDF2 digest (base64), никогда не сериализуется
	CreatedAt    time.Time  `json:"created_at"`           // время создания
	LastLogin    *time.Time `json:"last_login,omitempty"` // время последнего входа (nil если не входил)
}

// Customer представляет абонента провайдера
type Customer struct {
	ID              string    `json:"id"`               // UUID абонента
	Name            string    `json:"name"`             // имя абонента
	InternetPackage string    `json:"internet_package"` // тарифный план
	Sector          string    `json:"sector"`           // сектор обслуживания
	DateAdded       time.Time `json:"date_added"`       // дата подключения
}
