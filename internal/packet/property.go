/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package packet

import "craftwire/internal/protocol"

// Property is a signed profile property sent with LoginSuccess.
type Property struct {
	Name      string
	Value     string
	Signature protocol.Option[string]
}

var (
	propertyName      = protocol.NewField[string]("name", protocol.String(MaxPropertyValueLen))
	propertyValue     = protocol.NewField[string]("value", protocol.String(MaxPropertyValueLen))
	propertySignature = protocol.NewField("signature",
		protocol.Type[protocol.Option[string]](protocol.Optional[string](protocol.String(MaxPropertyValueLen))))

	propertyRecord = protocol.NewRecord("Property", propertyName, propertyValue, propertySignature)
)

// propertyType reads a Property through its record and hands back an
// owned value.
type propertyType struct{}

func (propertyType) Kind() string { return propertyRecord.Kind() }

func (propertyType) Summarize(c *protocol.Cursor) (protocol.Summary, error) {
	return propertyRecord.Summarize(c)
}

func (propertyType) View(s protocol.Summary) Property {
	v := propertyRecord.View(s)
	return Property{
		Name:      propertyName.Get(v),
		Value:     propertyValue.Get(v),
		Signature: propertySignature.Get(v),
	}
}

func (propertyType) Encode(e *protocol.Encoder, p Property) error {
	return propertyRecord.Build(e,
		propertyName.Value(p.Name),
		propertyValue.Value(p.Value),
		propertySignature.Value(p.Signature),
	)
}
