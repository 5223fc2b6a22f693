package payloads

// CleanupPayload — задача на удаление осиротевших объектов из хранилища.
// Публикуется координатором, потребляется воркером
type CleanupPayload struct {
	ObjectKeys []string `json:"object_keys"`
	Reason     string   `json:"reason"`
}
