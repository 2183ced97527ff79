// Copyright 2025 Poiesic Systems
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


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the values persisted in the key-value
// store. The two persisted shapes (Session, Submission) are small and
// stable, so codegen is not worth carrying here. Timestamps are encoded as
// Unix microseconds.

var (
	// IDMUS serializes an ID.
	IDMUS = idMUS{}
	// MessageMUS serializes a Message.
	MessageMUS = messageMUS{}
	// SessionMUS serializes a Session.
	SessionMUS = sessionMUS{}
	// SubmissionMUS serializes a Submission.
	SubmissionMUS = submissionMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

func marshalTime(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (v time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = time.UnixMicro(micros).UTC()
	return
}

func sizeTime(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

type messageMUS struct{}

func (messageMUS) Marshal(v Message, bs []byte) (n int) {
	n = varint.Int.Marshal(int(v.Sender), bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	return
}

func (messageMUS) Unmarshal(bs []byte) (v Message, n int, err error) {
	sender, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Sender = Sender(sender)
	var n1 int
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (messageMUS) Size(v Message) (size int) {
	size = varint.Int.Size(int(v.Sender))
	return size + ord.String.Size(v.Text)
}

type sessionMUS struct{}

func (sessionMUS) Marshal(v Session, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += varint.Int.Marshal(int(v.Step), bs[n:])
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Email, bs[n:])
	n += ord.String.Marshal(v.Phone, bs[n:])
	n += ord.Bool.Marshal(v.Submitted, bs[n:])
	n += varint.Int.Marshal(len(v.History), bs[n:])
	for _, msg := range v.History {
		n += MessageMUS.Marshal(msg, bs[n:])
	}
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (sessionMUS) Unmarshal(bs []byte) (v Session, n int, err error) {
	var n1 int
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var step int
	step, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Step = Step(step)
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Email, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Phone, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Submitted, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count > 0 {
		v.History = make([]Message, count)
		for i := 0; i < count; i++ {
			v.History[i], n1, err = MessageMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (sessionMUS) Size(v Session) (size int) {
	size = ord.String.Size(v.Id)
	size += varint.Int.Size(int(v.Step))
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Email)
	size += ord.String.Size(v.Phone)
	size += ord.Bool.Size(v.Submitted)
	size += varint.Int.Size(len(v.History))
	for _, msg := range v.History {
		size += MessageMUS.Size(msg)
	}
	size += sizeTime(v.CreatedAt)
	return size + sizeTime(v.UpdatedAt)
}

type submissionMUS struct{}

func (submissionMUS) Marshal(v Submission, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Email, bs[n:])
	n += ord.String.Marshal(v.Phone, bs[n:])
	n += ord.String.Marshal(v.Query, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	return
}

func (submissionMUS) Unmarshal(bs []byte) (v Submission, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Email, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Phone, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Query, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (submissionMUS) Size(v Submission) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Email)
	size += ord.String.Size(v.Phone)
	size += ord.String.Size(v.Query)
	return size + sizeTime(v.CreatedAt)
}
