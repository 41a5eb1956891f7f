/*
 * Copyright 2025 The RuleGo Authors.
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

package str

import (
	"testing"

	"github.com/rulego/sysdesign/test/assert"
)

func TestSprintfDict(t *testing.T) {
	dict := map[string]string{
		"operatorId": "gw",
		"type":       "STATUS_CODE",
	}
	assert.Equal(t, "sysdesign/gw/STATUS_CODE", SprintfDict("sysdesign/${operatorId}/${ type }", dict))
	assert.Equal(t, "sysdesign/${unknown}", SprintfDict("sysdesign/${unknown}", dict))
	assert.Equal(t, "plain", SprintfDict("plain", dict))
}

func TestCheckHasVar(t *testing.T) {
	assert.True(t, CheckHasVar("events/${operatorId}"))
	assert.False(t, CheckHasVar("events/all"))
}

func TestRandomStr(t *testing.T) {
	s := RandomStr(8)
	assert.Equal(t, 8, len(s))
	for _, c := range s {
		assert.True(t, (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'))
	}
	assert.Equal(t, "", RandomStr(0))
}
