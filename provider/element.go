// Copyright 2024 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package provider

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
)

// Element names used in requests and responses.
const (
	SecurityData    = "securityData"
	Security        = "security"
	FieldData       = "fieldData"
	ResponseError   = "responseError"
	SecurityError   = "securityError"
	FieldExceptions = "fieldExceptions"
	FieldID         = "fieldId"
	ErrorInfo       = "errorInfo"
	Category        = "category"
	MessageText     = "message"
	DateElement     = "date"

	Securities = "securities"
	Fields     = "fields"
	StartDate  = "startDate"
	EndDate    = "endDate"
)

// Element is a node of a request or a response message.
type Element struct {
	Name     string      `json:"name"`
	Value    interface{} `json:"value,omitempty"`
	Elements []*Element  `json:"elements,omitempty"` // sub-elements of a complex element
	Values   []*Element  `json:"values,omitempty"`   // values of an array element
	IsArray  bool        `json:"array,omitempty"`
}

// Scalar creates an element holding a single value.
func Scalar(name string, value interface{}) *Element {
	return &Element{Name: name, Value: value}
}

// Complex creates an element with the given sub-elements.
func Complex(name string, elements ...*Element) *Element {
	return &Element{Name: name, Elements: elements}
}

// Array creates an array element with the given values.
func Array(name string, values ...*Element) *Element {
	return &Element{Name: name, Values: values, IsArray: true}
}

// HasElement checks if a sub-element with the given name is present.
func (e *Element) HasElement(name string) bool {
	return e.find(name) != nil
}

func (e *Element) find(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Elements {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

// GetElement returns the first sub-element with the given name.
func (e *Element) GetElement(name string) (*Element, error) {
	c := e.find(name)
	if c == nil {
		return nil, errors.Reason("element '%s' not found in '%s'", name, e.name())
	}
	return c, nil
}

// GetElementAsString returns the value of the named sub-element rendered as a
// string.
func (e *Element) GetElementAsString(name string) (string, error) {
	c, err := e.GetElement(name)
	if err != nil {
		return "", err
	}
	return c.ValueAsString(), nil
}

// NumElements is the number of sub-elements of a complex element.
func (e *Element) NumElements() int {
	if e == nil {
		return 0
	}
	return len(e.Elements)
}

// ElementAt returns i-th sub-element; it panics when out of range.
func (e *Element) ElementAt(i int) *Element {
	return e.Elements[i]
}

// NumValues is the number of values in an array element.
func (e *Element) NumValues() int {
	if e == nil {
		return 0
	}
	return len(e.Values)
}

// ValueAt returns i-th value of an array element; it panics when out of range.
func (e *Element) ValueAt(i int) *Element {
	return e.Values[i]
}

// AppendValue adds values to an array element, converting it to an array if
// necessary.
func (e *Element) AppendValue(values ...*Element) {
	e.IsArray = true
	e.Values = append(e.Values, values...)
}

// ValueAsString renders a scalar value as a string. Numbers use the shortest
// representation which parses back to the same value. Non-scalar elements are
// rendered with String().
func (e *Element) ValueAsString() string {
	if e == nil {
		return ""
	}
	if e.IsArray || len(e.Elements) > 0 {
		return e.String()
	}
	switch v := e.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (e *Element) name() string {
	if e == nil {
		return "<nil>"
	}
	return e.Name
}

// String prints the element tree on a single line, e.g.
//   responseError = {category = BAD_ARGS, message = "unknown field"}
func (e *Element) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Element) write(b *strings.Builder) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	if e.Name != "" {
		b.WriteString(e.Name + " = ")
	}
	e.writeValue(b)
}

func (e *Element) writeValue(b *strings.Builder) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	switch {
	case e.IsArray:
		b.WriteString("[")
		for i, v := range e.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			v.writeValue(b)
		}
		b.WriteString("]")
	case len(e.Elements) > 0:
		b.WriteString("{")
		for i, c := range e.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			c.write(b)
		}
		b.WriteString("}")
	default:
		if s, ok := e.Value.(string); ok {
			b.WriteString(strconv.Quote(s))
			return
		}
		b.WriteString(e.ValueAsString())
	}
}
