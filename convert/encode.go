/*
 * TON Emulator
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatCBOR    Format = "cbor"
	FormatMsgpack Format = "msgpack"
)

var em cbor.EncMode

func init() {
	var err error
	em, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("could not initialize cbor encoding mode: %s", err.Error()))
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCBOR, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q, valid values are: json, cbor, msgpack", s)
	}
}

// Encode serializes the report. CBOR output is canonical, so equal reports
// encode to equal bytes.
func Encode(report *EmulationReport, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(report, "", "  ")
	case FormatCBOR:
		return em.Marshal(report)
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.UseArrayEncodedStructs(false)
		if err := enc.Encode(report); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func Decode(data []byte, format Format) (*EmulationReport, error) {
	var report EmulationReport

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &report)
	case FormatCBOR:
		err = cbor.Unmarshal(data, &report)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &report)
	default:
		err = fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
