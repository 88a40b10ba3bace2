package menus

import (
	"errors"
	"strings"
	"time"

	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
)

var (
	ErrMenuNotFound = errors.New("menu not found")
	ErrInvalidMenu  = errors.New("invalid menu")
)

// Menu is an exercise template; workouts reference it through menuId and
// inherit its type.
type Menu struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Type      records.MenuType `json:"type"`
	Order     int              `json:"order"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (m *Menu) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return errors.Join(ErrInvalidMenu, errors.New("name is required"))
	}
	if !m.Type.IsValid() {
		return errors.Join(ErrInvalidMenu, errors.New("unknown menu type: "+string(m.Type)))
	}
	return nil
}
