// Package ptr 는 nullable 필드용 포인터 헬퍼를 제공한다.
package ptr

// To: 값의 포인터를 만든다.
func To[T any](v T) *T { return &v }

// Int: int 포인터를 만든다.
func Int(v int) *int { return &v }

// String: 문자열 포인터를 만든다.
func String(v string) *string { return &v }

// Deref 는 nil 이면 fallback 을, 아니면 가리키는 값을 돌려준다.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// EqualInt 는 두 *int 가 같은 값(둘 다 nil 포함)을 가리키는지 비교한다.
func EqualInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
