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

package corpus

import (
	"fmt"
	"os"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// artifactVersion is bumped whenever the on-disk layout changes.
const artifactVersion = 1

// The artifact stores questions, answers, the fitted vocabulary with its IDF
// values, and optional question embeddings. Question TF-IDF vectors are
// recomputed at load time from the vocabulary, so they are not persisted.

// SaveModel writes the trained model artifact to path.
func SaveModel(path string, model *Model) error {
	size := varint.Int.Size(artifactVersion)
	size += sizeStrings(model.questions)
	size += sizeStrings(model.answers)
	size += sizeStrings(model.vectorizer.terms)
	size += sizeFloat64s(model.vectorizer.idf)
	size += ord.Bool.Size(model.HasEmbeddings())
	if model.HasEmbeddings() {
		size += varint.Int.Size(len(model.questionEmbeddings))
		for _, embedding := range model.questionEmbeddings {
			size += sizeFloat32s(embedding)
		}
	}

	bs := make([]byte, size)
	n := varint.Int.Marshal(artifactVersion, bs)
	n += marshalStrings(model.questions, bs[n:])
	n += marshalStrings(model.answers, bs[n:])
	n += marshalStrings(model.vectorizer.terms, bs[n:])
	n += marshalFloat64s(model.vectorizer.idf, bs[n:])
	n += ord.Bool.Marshal(model.HasEmbeddings(), bs[n:])
	if model.HasEmbeddings() {
		n += varint.Int.Marshal(len(model.questionEmbeddings), bs[n:])
		for _, embedding := range model.questionEmbeddings {
			n += marshalFloat32s(embedding, bs[n:])
		}
	}

	if err := os.WriteFile(path, bs, 0o644); err != nil {
		return fmt.Errorf("writing model artifact %s: %w", path, err)
	}
	return nil
}

// LoadModel reads a trained model artifact from path. A missing file is
// reported as ErrModelNotFound so callers can degrade instead of failing.
func LoadModel(path string) (*Model, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("reading model artifact %s: %w", path, err)
	}

	version, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	if version != artifactVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadArtifact, version)
	}

	var n1 int
	questions, n1, err := unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	answers, n1, err := unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	terms, n1, err := unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	idf, n1, err := unmarshalFloat64s(bs[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	hasEmbeddings, n1, err := ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}

	var embeddings [][]float32
	if hasEmbeddings {
		var count int
		count, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
		}
		if err = checkCount(count, len(bs)-n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
		}
		embeddings = make([][]float32, count)
		for i := 0; i < count; i++ {
			embeddings[i], n1, err = unmarshalFloat32s(bs[n:])
			n += n1
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
			}
		}
	}

	if len(answers) != len(questions) || len(idf) != len(terms) {
		return nil, fmt.Errorf("%w: inconsistent section lengths", ErrBadArtifact)
	}
	if hasEmbeddings && len(embeddings) != len(questions) {
		return nil, fmt.Errorf("%w: embedding count mismatch", ErrBadArtifact)
	}

	vectorizer := newVectorizer(terms, idf)
	questionVectors := make([][]float64, len(questions))
	for i, question := range questions {
		questionVectors[i] = vectorizer.Transform(question)
	}

	return &Model{
		questions:          questions,
		answers:            answers,
		vectorizer:         vectorizer,
		questionVectors:    questionVectors,
		questionEmbeddings: embeddings,
	}, nil
}

// checkCount rejects element counts a corrupt artifact cannot honestly
// carry: negative, or more elements than remaining bytes (every element
// occupies at least one byte). Without it a hostile count would panic the
// allocation instead of surfacing ErrBadArtifact.
func checkCount(count, remaining int) error {
	if count < 0 || count > remaining {
		return fmt.Errorf("invalid element count %d for %d remaining bytes", count, remaining)
	}
	return nil
}

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return
}

func unmarshalStrings(bs []byte) (v []string, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil || count == 0 {
		return
	}
	if err = checkCount(count, len(bs)-n); err != nil {
		return
	}
	var n1 int
	v = make([]string, count)
	for i := 0; i < count; i++ {
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func sizeStrings(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return
}

func marshalFloat64s(v []float64, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float64.Marshal(f, bs[n:])
	}
	return
}

func unmarshalFloat64s(bs []byte) (v []float64, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil || count == 0 {
		return
	}
	if err = checkCount(count, len(bs)-n); err != nil {
		return
	}
	var n1 int
	v = make([]float64, count)
	for i := 0; i < count; i++ {
		v[i], n1, err = raw.Float64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func sizeFloat64s(v []float64) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float64.Size(f)
	}
	return
}

func marshalFloat32s(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func unmarshalFloat32s(bs []byte) (v []float32, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil || count == 0 {
		return
	}
	if err = checkCount(count, len(bs)-n); err != nil {
		return
	}
	var n1 int
	v = make([]float32, count)
	for i := 0; i < count; i++ {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func sizeFloat32s(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}
