package notice

import (
	"github.com/tendant/simple-verify/pkg/notification"
)

// Notice types used by the verification service.
const (
	TwofaCodeNotice notification.NoticeType = "twofa_code"
)
