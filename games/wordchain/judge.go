/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// DefaultDictionaryURL is a free dictionary API that answers 200 for
// known English words and 404 otherwise.
const DefaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en/%s"

// Judge decides whether a word is an accepted dictionary word.
type Judge interface {
	Valid(ctx context.Context, word string) (bool, error)
}

// JudgeFunc adapts a plain function to a Judge.
type JudgeFunc func(ctx context.Context, word string) (bool, error)

func (f JudgeFunc) Valid(ctx context.Context, word string) (bool, error) {
	return f(ctx, word)
}

// HTTPJudge looks words up against a dictionary HTTP API. The URL
// template must contain a single %s, replaced by the escaped word.
type HTTPJudge struct {
	client   *http.Client
	template string
	apiKey   string
}

func NewHTTPJudge(client *http.Client, template, apiKey string) (*HTTPJudge, error) {
	if strings.Count(template, "%s") != 1 {
		return nil, errors.Errorf("dictionary url must contain exactly one %%s: %q", template)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPJudge{
		client:   client,
		template: template,
		apiKey:   apiKey,
	}, nil
}

func (j *HTTPJudge) Valid(ctx context.Context, word string) (bool, error) {
	word = Normalize(word)
	if word == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(j.template, url.PathEscape(word)), nil)
	if err != nil {
		return false, errors.Wrap(err, "build dictionary request failed")
	}

	if j.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", j.apiKey)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return false, errors.Wrapf(err, "dictionary lookup of %q failed", word)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, errors.Errorf("dictionary lookup of %q returned %s", word, resp.Status)
	}
}

// ListJudge accepts exactly the words of a fixed list.
type ListJudge struct {
	words map[string]struct{}
}

// NewListJudge reads one word per line; blank lines and lines starting
// with # are skipped.
func NewListJudge(r io.Reader) (*ListJudge, error) {
	j := &ListJudge{
		words: make(map[string]struct{}),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := Normalize(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		j.words[line] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read word list failed")
	}

	return j, nil
}

func LoadListJudge(path string) (*ListJudge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open word list failed")
	}
	defer f.Close()

	return NewListJudge(f)
}

func (j *ListJudge) Valid(_ context.Context, word string) (bool, error) {
	_, ok := j.words[Normalize(word)]

	return ok, nil
}

func (j *ListJudge) Len() int {
	return len(j.words)
}

// CachedJudge memoizes verdicts by normalized word. Lookup errors are
// reported as invalid and are not cached, so a flaky upstream can be
// retried on the next submission.
type CachedJudge struct {
	inner Judge
	cache *lru.Cache[string, bool]
}

func NewCachedJudge(inner Judge, size int) (*CachedJudge, error) {
	cache, err := lru.New[string, bool](size)
	if err != nil {
		return nil, errors.Wrap(err, "create judge cache failed")
	}

	return &CachedJudge{
		inner: inner,
		cache: cache,
	}, nil
}

func (j *CachedJudge) Valid(ctx context.Context, word string) (bool, error) {
	key := Normalize(word)
	if key == "" {
		return false, nil
	}

	if valid, ok := j.cache.Get(key); ok {
		return valid, nil
	}

	valid, err := j.inner.Valid(ctx, key)
	if err != nil {
		return false, err
	}

	j.cache.Add(key, valid)

	return valid, nil
}

func (j *CachedJudge) Len() int {
	return j.cache.Len()
}
