// internal/adapter/transport/client.go
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GoArmGo/ArtJam/internal/domain"
)

// Client выполняет передачу байтов по подписанному URL для записи.
// Никаких внутренних повторов: неудавшаяся передача не оставляет объекта
// по публичному адресу, а повтор — забота вызывающего, с новым слотом
type Client struct {
	httpClient *http.Client
}

// NewClient создает новый транспортный клиент с таймаутом на запрос
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transfer передает содержимое файла PUT-запросом по подписанному URL.
// Content-Type обязан совпадать с тем, под который выдавался слот
func (c *Client) Transfer(ctx context.Context, writeURL string, body io.Reader, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, writeURL, body)
	if err != nil {
		return fmt.Errorf("%w: ошибка создания HTTP-запроса: %v", domain.ErrTransfer, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ошибка выполнения PUT-запроса в хранилище: %v", domain.ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: хранилище вернуло статус %d: %s", domain.ErrTransfer, resp.StatusCode, string(bodyBytes))
	}

	return nil
}
