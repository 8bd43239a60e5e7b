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

package block

import (
	"errors"
	"fmt"
)

var (
	ErrAnycastAddress      = errors.New("anycast addresses are not supported")
	ErrValueOverflow       = errors.New("value does not fit into 256 bits")
	ErrNegativeValue       = errors.New("value must not be negative")
	ErrExtraCurrencyMerge  = errors.New("merging extra currency collections is not supported")
	ErrUnsupportedPrefix   = errors.New("unsupported constructor prefix")
	ErrMissingConfigParams = errors.New("configuration parameters root is missing")
)

// ConfigParamError reports that a configuration parameter is absent or malformed.
type ConfigParamError struct {
	Param uint32
	Err   error
}

func (e *ConfigParamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("configuration parameter #%d is absent", e.Param)
	}
	return fmt.Sprintf("cannot unpack configuration parameter #%d: %s", e.Param, e.Err)
}

func (e *ConfigParamError) Unwrap() error {
	return e.Err
}
