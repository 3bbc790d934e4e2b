package fetcher

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock_Cloudflare403(t *testing.T) {
	resp := &http.Response{
		StatusCode: 403,
		Header:     http.Header{"Cf-Ray": {"abc123"}},
	}
	blocked, bt := DetectBlock(resp, nil)
	assert.True(t, blocked)
	assert.Equal(t, BlockCloudflare, bt)
}

func TestDetectBlock_ChallengeMarker(t *testing.T) {
	resp := &http.Response{StatusCode: 200, Header: http.Header{}}
	blocked, bt := DetectBlock(resp, []byte("<html><p>Checking your browser before accessing</p></html>"))
	assert.True(t, blocked)
	assert.Equal(t, BlockCloudflare, bt)
}

func TestDetectBlock_CaptchaInSmallBody(t *testing.T) {
	resp := &http.Response{StatusCode: 200, Header: http.Header{}}
	body := []byte("<html><body>Please complete the reCAPTCHA to continue</body></html>")
	blocked, bt := DetectBlock(resp, body)
	assert.True(t, blocked)
	assert.Equal(t, BlockCaptcha, bt)
}

func TestDetectBlock_CaptchaWidgetOnArticleIgnored(t *testing.T) {
	resp := &http.Response{StatusCode: 200, Header: http.Header{}}
	article := "<html><body><article>" + strings.Repeat("<p>본문 내용입니다.</p>", 2000) +
		`</article><script src="https://www.google.com/recaptcha/api.js"></script></body></html>`
	blocked, _ := DetectBlock(resp, []byte(article))
	assert.False(t, blocked)
}

func TestDetectBlock_JSShell(t *testing.T) {
	resp := &http.Response{StatusCode: 200, Header: http.Header{}}
	body := []byte("<html><noscript>Enable JavaScript to continue</noscript></html>")
	blocked, bt := DetectBlock(resp, body)
	assert.True(t, blocked)
	assert.Equal(t, BlockJSShell, bt)
}

func TestDetectBlock_NormalPage(t *testing.T) {
	resp := &http.Response{StatusCode: 200, Header: http.Header{}}
	blocked, bt := DetectBlock(resp, []byte("<html><h1>제목</h1><article><p>내용</p></article></html>"))
	assert.False(t, blocked)
	assert.Equal(t, BlockNone, bt)
}

func TestDetectBlock_NilResponse(t *testing.T) {
	blocked, _ := DetectBlock(nil, []byte("captcha"))
	assert.False(t, blocked)
}
