// Copyright 2025 EasyPatent Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/easypatent/easypatent/core"
)

// MarshalPatentRecord serializes a PatentRecord to bytes.
func MarshalPatentRecord(record *core.PatentRecord) []byte {
	buf := make([]byte, core.PatentRecordMUS.Size(*record))
	core.PatentRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalPatentRecord deserializes a PatentRecord from bytes.
func UnmarshalPatentRecord(data []byte) (*core.PatentRecord, error) {
	record, _, err := core.PatentRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	// Unix-micro timestamps decode in the local zone; records are stored
	// and compared in UTC.
	record.CollectedAt = record.CollectedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return &record, nil
}
