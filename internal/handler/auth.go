package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blockfall/server/internal/net"
	"github.com/blockfall/server/internal/net/packet"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const (
	loginOK              byte = 0x00
	loginVersionMismatch byte = 0x01
	loginBadName         byte = 0x02
	loginWrongPass       byte = 0x08
	loginBanned          byte = 0x10
	loginAlreadyOnline   byte = 0x16
)

// HandleVersion processes C_VERSION.
// Format: [opcode][D client protocol version]
func HandleVersion(sess *net.Session, r *packet.Reader, deps *Deps) {
	clientVersion := r.ReadD()
	if clientVersion != packet.ProtocolVersion {
		deps.Log.Info(fmt.Sprintf("協定版本不符  session=%d  client=%d", sess.ID, clientVersion))
		sendLoginResult(sess, loginVersionMismatch)
		sess.Close()
		return
	}
	sess.SetState(packet.StateVersionOK)
}

// HandleLogin processes C_LOGIN.
// Format: [opcode][account\0][password\0]
func HandleLogin(sess *net.Session, r *packet.Reader, deps *Deps) {
	accountName, ok := normalizeAccountName(r.ReadS())
	password := r.ReadS()
	ip := sess.IP

	if !ok {
		sendLoginResult(sess, loginBadName)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Load account
	account, err := deps.AccountRepo.Load(ctx, accountName)
	if err != nil {
		deps.Log.Error("載入帳號資料庫錯誤", zap.Error(err))
		sendLoginResult(sess, loginWrongPass)
		return
	}

	// Auto-create if enabled
	if account == nil {
		if !deps.Config.Game.AutoCreateAccounts {
			sendLoginResult(sess, loginWrongPass)
			return
		}
		account, err = deps.AccountRepo.Create(ctx, accountName, password, ip)
		if err != nil {
			deps.Log.Error("建立帳號資料庫錯誤", zap.Error(err))
			sendLoginResult(sess, loginWrongPass)
			return
		}
		deps.Log.Info(fmt.Sprintf("自動建立帳號  帳號=%s", accountName))
	} else {
		// Validate password
		if !deps.AccountRepo.ValidatePassword(account.PasswordHash, password) {
			sendLoginResult(sess, loginWrongPass)
			return
		}
	}

	// Check banned
	if account.Banned {
		deps.Log.Info(fmt.Sprintf("被封鎖帳號嘗試登入  帳號=%s", accountName))
		sendLoginResult(sess, loginBanned)
		return
	}

	// Check already online
	if account.Online || deps.World.GetPlayerByAccount(accountName) != nil {
		sendLoginResult(sess, loginAlreadyOnline)
		return
	}

	// Success — mark online
	if err := deps.AccountRepo.SetOnline(ctx, accountName, true); err != nil {
		deps.Log.Error("設定上線狀態資料庫錯誤", zap.Error(err))
	}
	if err := deps.AccountRepo.UpdateLastActive(ctx, accountName, ip); err != nil {
		deps.Log.Error("更新最後活動時間資料庫錯誤", zap.Error(err))
	}

	sess.AccountName = accountName
	sess.SetState(packet.StateAuthenticated)
	sendLoginResult(sess, loginOK)

	deps.Log.Info(fmt.Sprintf("登入成功  帳號=%s  ip=%s", accountName, ip))
}

// HandleQuit processes C_QUIT. Save happens in the disconnect cleanup once the
// session is actually torn down.
func HandleQuit(sess *net.Session, r *packet.Reader, deps *Deps) {
	deps.Log.Info(fmt.Sprintf("玩家離線  session=%d  帳號=%s", sess.ID, sess.AccountName))
	sess.Close()
}

// normalizeAccountName canonicalizes a client-supplied account name: NFKC
// normalization so visually-identical names collapse to one account, then
// lowercase. Returns false for names outside 3..16 chars of [a-z0-9_].
func normalizeAccountName(raw string) (string, bool) {
	name := strings.ToLower(norm.NFKC.String(strings.TrimSpace(raw)))
	if len(name) < 3 || len(name) > 16 {
		return "", false
	}
	for _, c := range name {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' {
			continue
		}
		return "", false
	}
	return name, true
}

// sendLoginResult 發送 S_LOGIN_RESULT。
// Format: [C opcode][C reason]
func sendLoginResult(sess *net.Session, reason byte) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LOGIN_RESULT)
	w.WriteC(reason)
	sess.Send(w.Bytes())
}
