package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	apperrors "calibrify/pkg/errors"
)

// FlexInt принимает из JSON как число, так и строку с числом ("3").
// Нечисловая строка - явная ошибка, а не ноль.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return apperrors.NewInvalidInputError("", "некорректная строка: %v", err)
		}
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return apperrors.NewInvalidInputError("", "ожидалось целое число, получено %q", s)
		}
		*f = FlexInt(i)
		return nil
	}

	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return apperrors.NewInvalidInputError("", "ожидалось целое число, получено %s", string(data))
	}
	*f = FlexInt(i)
	return nil
}

func (f FlexInt) Int() int { return int(f) }
