package models

// UserInfo is the public profile shown next to posts and chats.
type UserInfo struct {
	DisplayName string `json:"displayName"`
	IslandName  string `json:"islandName"`
	PhotoURL    string `json:"photoURL"`
}

// UserInfoWithCounts adds the aggregate review and report counters.
type UserInfoWithCounts struct {
	UserInfo
	ReviewCount int `json:"reviewCount"`
	ReportCount int `json:"reportCount"`
}

// DefaultUserInfo is substituted whenever a user's profile is unavailable,
// e.g. the account was deleted.
var DefaultUserInfo = UserInfo{
	DisplayName: "Deleted user",
	IslandName:  "Unknown island",
	PhotoURL:    "",
}

// DefaultUserInfoWithCounts is DefaultUserInfo with zeroed counters.
var DefaultUserInfoWithCounts = UserInfoWithCounts{
	UserInfo: DefaultUserInfo,
}

// UserInfoOrDefault returns info, or DefaultUserInfo when info is nil.
func UserInfoOrDefault(info *UserInfo) UserInfo {
	if info == nil {
		return DefaultUserInfo
	}
	return *info
}

// UserInfoWithCountsOrDefault returns info, or DefaultUserInfoWithCounts when info is nil.
func UserInfoWithCountsOrDefault(info *UserInfoWithCounts) UserInfoWithCounts {
	if info == nil {
		return DefaultUserInfoWithCounts
	}
	return *info
}
