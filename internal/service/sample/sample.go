// Package sample содержит встроенный пример викторины, используемый как резервный источник.
package sample

import _ "embed"

//go:embed general_knowledge.json
var generalKnowledge []byte

// Document возвращает копию JSON-документа встроенной викторины
func Document() []byte {
	return append([]byte(nil), generalKnowledge...)
}
