package normalize

// UnknownBranch labels items that carry no branch name or id.
const UnknownBranch = "Unknown branch"

// Items normalizes a GetAvailabilityInfo response into one entry per
// item, in upstream order.
func Items(raw interface{}) []Availability {
	out := []Availability{}
	for _, item := range lookupList(raw, "$.Result.Items", "$.items", "$.Items") {
		if m, ok := asObject(item); ok {
			out = append(out, availabilityItem(m))
		}
	}
	return out
}

func availabilityItem(m object) Availability {
	a := Availability{
		Branch:     str(m, "branchName", "BranchName", "branchId", "BranchID", "BranchId"),
		CallNumber: str(m, "callNumber", "CallNumber", "formattedCallNumber", "FormattedCallNumber"),
		Status:     status(m),
		Available:  count(m, "available", "Available"),
		Total:      count(m, "total", "Total"),
	}

	if a.Branch == "" {
		// v2 items nest the branch under location
		if loc, ok := pick(m, asObject, "location", "Location"); ok {
			a.Branch = str(loc, "name", "Name", "code", "Code")
		}
	}
	if a.Branch == "" {
		a.Branch = UnknownBranch
	}
	return a
}

// status accepts a plain string or a {code,name} object.
func status(m object) string {
	if s := str(m, "status", "Status"); s != "" {
		return s
	}
	if obj, ok := pick(m, asObject, "status", "Status"); ok {
		return str(obj, "name", "Name", "code", "Code")
	}
	return ""
}

// count resolves by key presence: the first spelling present decides, even
// when its value is null.
func count(m object, keys ...string) *int64 {
	for _, key := range keys {
		v, ok := m[key]
		if !ok {
			continue
		}
		if n, ok := asInt(v); ok {
			return &n
		}
		return nil
	}
	return nil
}
