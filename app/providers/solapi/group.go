package solapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// GroupCount summarizes delivery of one message group.
type GroupCount struct {
	GroupID string `json:"groupId"`
	Total   int    `json:"totalCount"`
	Success int    `json:"successCount"`
	Fail    int    `json:"failCount"`
	Sending int    `json:"sendingCount"`
}

// GroupStatus fetches the counts of a group. When the group summary carries
// no success or failure counts the per-message list is consulted instead.
func (c *Client) GroupStatus(ctx context.Context, groupID string) (GroupCount, error) {
	body, err := c.do(ctx, http.MethodGet, "/messages/v4/groups/"+url.PathEscape(groupID), nil)
	if err != nil {
		return GroupCount{GroupID: groupID}, err
	}
	count := ExtractCounts(body)
	count.GroupID = groupID
	if count.Success != 0 || count.Fail != 0 {
		return count, nil
	}

	q := url.Values{"groupId": {groupID}, "limit": {"1000"}}
	list, err := c.do(ctx, http.MethodGet, "/messages/v4/list?"+q.Encode(), nil)
	if err != nil {
		// the summary is still usable
		return count, nil
	}
	if fromList, ok := CountMessages(list); ok {
		fromList.GroupID = groupID
		return fromList, nil
	}
	return count, nil
}

// ExtractCounts reads group counts from any of the response shapes Solapi
// has been seen to return.
func ExtractCounts(body []byte) GroupCount {
	root := gjson.ParseBytes(body)
	info := root.Get("groupInfo")
	if !info.Exists() {
		info = root
	}
	count := info.Get("count")
	if !count.Exists() {
		count = root.Get("count")
	}
	if !count.Exists() {
		count = info
	}

	var g GroupCount
	g.Total = firstNumber(count.Get("total"), count.Get("sentTotal"), count.Get("totalCount"),
		info.Get("totalCount"), info.Get("total"), root.Get("total"), root.Get("totalCount"))
	g.Success = firstNumber(count.Get("sentSuccess"), count.Get("successful"), count.Get("success"),
		count.Get("successCount"), info.Get("successCount"), info.Get("successful"), info.Get("success"),
		root.Get("successful"), root.Get("successCount"))
	g.Fail = firstNumber(count.Get("sentFailed"), count.Get("failed"), count.Get("fail"),
		count.Get("failCount"), info.Get("failCount"), info.Get("failed"), info.Get("fail"),
		root.Get("failed"), root.Get("failCount"))

	sending := firstNumber(count.Get("sentPending"), count.Get("sending"), count.Get("sendingCount"),
		info.Get("sendingCount"), info.Get("sending"), root.Get("sending"), root.Get("sendingCount"))
	if !anyNumber(count.Get("sentPending"), count.Get("sending"), count.Get("sendingCount"),
		info.Get("sendingCount"), info.Get("sending"), root.Get("sending"), root.Get("sendingCount")) {
		sending = g.Total - g.Success - g.Fail
	}
	g.Sending = sending

	regOK := firstNumber(count.Get("registeredSuccess"), info.Get("registeredSuccess"), root.Get("registeredSuccess"))
	regFail := firstNumber(count.Get("registeredFailed"), info.Get("registeredFailed"), root.Get("registeredFailed"))
	if regOK != 0 || regFail != 0 {
		if regOK+regFail > g.Total {
			g.Total = regOK + regFail
		}
		g.Success += regOK
		g.Fail += regFail
	}
	return g
}

// CountMessages classifies a message list response. ok is false when the
// list is empty.
func CountMessages(body []byte) (GroupCount, bool) {
	msgs := gjson.GetBytes(body, "messages")
	var items []gjson.Result
	if msgs.IsArray() {
		items = msgs.Array()
	} else if msgs.IsObject() {
		// keyed by message id
		msgs.ForEach(func(_, v gjson.Result) bool {
			items = append(items, v)
			return true
		})
	}
	if len(items) == 0 {
		return GroupCount{}, false
	}

	g := GroupCount{Total: len(items)}
	for _, m := range items {
		status := strings.ToUpper(m.Get("status").String())
		code := m.Get("statusCode").String()
		msg := strings.ToUpper(m.Get("statusMessage").String())

		switch {
		case status == "COMPLETE" || status == "DELIVERED" || code == "4000" ||
			strings.Contains(msg, "성공") || strings.Contains(msg, "완료") || strings.Contains(msg, "DELIVERED"):
			g.Success++
		case status == "FAILED" || status == "REJECTED" ||
			(code != "" && code != "4000" && code != "2000" && code != "3000" && code != "1000") ||
			strings.Contains(msg, "실패") || strings.Contains(msg, "FAILED"):
			g.Fail++
		case status == "SENDING" || status == "PENDING" || status == "ACCEPTED" || code == "2000" || code == "3000":
			g.Sending++
		}
	}
	return g, true
}

func firstNumber(rs ...gjson.Result) int {
	for _, r := range rs {
		if r.Type == gjson.Number {
			return int(r.Int())
		}
	}
	return 0
}

func anyNumber(rs ...gjson.Result) bool {
	for _, r := range rs {
		if r.Type == gjson.Number {
			return true
		}
	}
	return false
}

func decode(body []byte, v interface{}) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode solapi response: %w", err)
	}
	return nil
}
