package compare_test

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	cmpHugeN = 10000
	cmpHugeK = 8
)

func smallUserJSON() []byte { return []byte(`{"id":"u_1","name":"alice"}`) }

func generateHugeJSONArray(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		n := strconv.Itoa(i)
		buf.WriteString(`{"id":"obj_` + n + `","name":"n` + n + `","age":` + n + `,"active":`)
		buf.WriteString(strconv.FormatBool(i%2 == 0))
		buf.WriteString(`,"meta":{"score":` + n + `}`)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(`,"k` + strconv.Itoa(k) + `":"v` + n + `_` + strconv.Itoa(k) + `"`)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// stdAny decodes JSON the way jsonschema/v5 expects its input.
func stdAny(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
