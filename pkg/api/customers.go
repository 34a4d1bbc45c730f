package api

// CustomerRequest представляет запрос на создание/обновление абонента
type CustomerRequest struct {
	Name            string `json:"name"`             // имя абонента
	InternetPackage string `json:"internet_package"` // тарифный план
	Sector          string `json:"sector"`           // сектор обслуживания
}

// CustomerResponse представляет абонента в ответе API
type CustomerResponse struct {
	ID              string `json:"id"`               // UUID абонента
	Name            string `json:"name"`             // имя абонента
	InternetPackage string `json:"internet_package"` // тарифный план
	Sector          string `json:"sector"`           // сектор обслуживания
	DateAdded       string `json:"date_added"`       // дата подключения (RFC3339)
}

// CustomerListResponse представляет список абонентов
type CustomerListResponse struct {
	Customers []CustomerResponse `json:"customers"` // список абонентов
	Total     int                `json:"total"`     // общее количество
}
