package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// documentHashLength - длина идентификатора в шестнадцатеричных символах.
const documentHashLength = 32

// DocumentHash возвращает стабильный идентификатор содержимого документа.
// Одинаковые экспортированные документы получают один и тот же идентификатор,
// поэтому повторный предпросмотр без изменений переиспользует ключ.
func DocumentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:documentHashLength]
}
