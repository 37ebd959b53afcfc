package gamedata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Export сериализует документ в формат файла: Check на глубокой копии, без поля id,
// отступ в два пробела. Исходный документ не меняется.
func Export(g *Game) ([]byte, error) {
	clone := g.Clone()
	Check(clone)
	clone.ID = ""
	data, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game document: %w", err)
	}
	return data, nil
}

// Import разбирает документ, выдает ему новый id и прогоняет Check.
// При ошибке разбора возвращает ErrMalformedDocument; текущий документ вызывающего
// не затрагивается, так как результат - новое значение.
func Import(data []byte) (*Game, error) {
	g := &Game{}
	if err := json.Unmarshal(data, g); err != nil {
		if errors.Is(err, ErrMalformedDocument) {
			return nil, err
		}
		// Синтаксические ошибки json.Unmarshal возвращает до вызова UnmarshalJSON.
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	g.ID = uuid.NewString()
	Check(g)
	return g, nil
}
