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

package refdata

import (
	"github.com/stockparfait/marketdata/provider"
)

// Message types of the reference data service responses.
const (
	ReferenceDataResponse  = "ReferenceDataResponse"
	HistoricalDataResponse = "HistoricalDataResponse"
)

// TestField creates a field value element. For use in tests.
func TestField(name string, value interface{}) *provider.Element {
	return provider.Scalar(name, value)
}

// TestFieldException creates a field exception element. For use in tests.
func TestFieldException(fieldID, message string) *provider.Element {
	return provider.Complex(provider.FieldExceptions,
		provider.Scalar(provider.FieldID, fieldID),
		provider.Complex(provider.ErrorInfo,
			provider.Scalar(provider.Category, "BAD_FLD"),
			provider.Scalar(provider.MessageText, message)))
}

// TestSecurity creates a snapshot security entry with field values and
// optional field exceptions. For use in tests.
func TestSecurity(security string, fields []*provider.Element, exceptions ...*provider.Element) *provider.Element {
	return provider.Complex(provider.SecurityData,
		provider.Scalar(provider.Security, security),
		provider.Complex(provider.FieldData, fields...),
		provider.Array(provider.FieldExceptions, exceptions...))
}

// TestSecurityError creates a security error element. For use in tests.
func TestSecurityError(category, message string) *provider.Element {
	return provider.Complex(provider.SecurityError,
		provider.Scalar(provider.Category, category),
		provider.Scalar(provider.MessageText, message))
}

// TestInvalidSecurity creates a snapshot security entry carrying a security
// error. For use in tests.
func TestInvalidSecurity(security, message string) *provider.Element {
	return provider.Complex(provider.SecurityData,
		provider.Scalar(provider.Security, security),
		TestSecurityError("BAD_SEC", message),
		provider.Complex(provider.FieldData),
		provider.Array(provider.FieldExceptions))
}

// TestSnapshotMessage creates a snapshot response message. For use in tests.
func TestSnapshotMessage(securities ...*provider.Element) *provider.Message {
	return provider.NewMessage(ReferenceDataResponse,
		provider.Array(provider.SecurityData, securities...))
}

// TestHistoryRow creates a single date row of a historical response. For use
// in tests.
func TestHistoryRow(date, field string, value interface{}) *provider.Element {
	return provider.Complex(provider.FieldData,
		provider.Scalar(provider.DateElement, date),
		provider.Scalar(field, value))
}

// TestHistoryMessage creates a historical response message. For use in tests.
func TestHistoryMessage(security string, rows ...*provider.Element) *provider.Message {
	return provider.NewMessage(HistoricalDataResponse,
		provider.Complex(provider.SecurityData,
			provider.Scalar(provider.Security, security),
			provider.Array(provider.FieldData, rows...)))
}

// TestInvalidHistoryMessage creates a historical response message for a
// security with a security error. For use in tests.
func TestInvalidHistoryMessage(security, message string) *provider.Message {
	return provider.NewMessage(HistoricalDataResponse,
		provider.Complex(provider.SecurityData,
			provider.Scalar(provider.Security, security),
			TestSecurityError("BAD_SEC", message)))
}

// TestResponseErrorMessage creates a response carrying a response error. For
// use in tests.
func TestResponseErrorMessage(category, message string) *provider.Message {
	return provider.NewMessage(HistoricalDataResponse,
		provider.Complex(provider.ResponseError,
			provider.Scalar(provider.Category, category),
			provider.Scalar(provider.MessageText, message)))
}
