package result

// directFields are copied from data to the top level unchanged.
var directFields = []string{
	"domain", "icp", "company", "url", "path", "title", "value", "context",
	"location", "severity", "cname", "provider", "evidence", "description",
	"service", "state", "port", "host", "target", "name", "version",
	"category", "confidence", "vuln_id", "matched_at", "type", "pattern",
	"matches", "banner",
}

// camelPromotions run in order; http_status follows status_code and wins.
var camelPromotions = []struct{ from, to string }{
	{"icp_type", "icpType"},
	{"status_code", "statusCode"},
	{"http_status", "statusCode"},
	{"content_type", "contentType"},
	{"web_server", "webServer"},
	{"cdn_provider", "cdnProvider"},
	{"cdn_name", "cdnName"},
	{"is_alive", "isAlive"},
	{"is_backup", "isBackup"},
	{"is_config", "isConfig"},
	{"is_api", "isApi"},
}

// Normalize turns one backend scan result into the flattened camelCase
// shape. It never fails: absent keys are skipped or defaulted.
//
// A key counts as present when it exists in the map, whatever its value.
// A present status_code of 0 is therefore kept and blocks the alive default.
// The envelope defaults are the exception: a null id, tags, project or
// source counts as absent.
func Normalize(raw Record) Record {
	out := make(Record, len(raw)+16)

	if v, ok := raw["id"]; ok && v != nil {
		out["id"] = v
	} else if v, ok := raw["_id"]; ok && v != nil {
		out["id"] = v
	}
	copyAs(out, raw, "task_id", "taskId")
	copyAs(out, raw, "type", "type")
	copyAs(out, raw, "data", "data")
	if v, ok := raw["tags"]; ok && v != nil {
		out["tags"] = v
	} else {
		out["tags"] = []any{}
	}
	out["project"] = defaultString(raw, "project")
	out["source"] = defaultString(raw, "source")
	copyAs(out, raw, "created_at", "createdAt")
	copyAs(out, raw, "updated_at", "updatedAt")

	data, ok := AsRecord(raw["data"])
	if !ok {
		return out
	}
	for k, v := range promote(data) {
		out[k] = v
	}
	return out
}

// promote computes the data-derived fields in their documented order.
func promote(data Record) Record {
	out := make(Record, len(data)+8)

	for _, k := range directFields {
		copyAs(out, data, k, k)
	}

	if v, ok := data["host"]; ok {
		out["ip"] = v
	}

	full, hasFull := data["full_domain"]
	sub, hasSub := data["subdomain"]
	dom, hasDom := data["domain"]
	switch {
	case hasFull:
		out["subdomain"] = full
		out["fullDomain"] = full
	case hasSub && hasDom:
		joined := stringify(sub) + "." + stringify(dom)
		out["subdomain"] = joined
		out["fullDomain"] = joined
	case hasSub:
		out["subdomain"] = sub
	}

	if ip, ok := data["ip"].(string); ok && ip != "" {
		out["ips"] = []any{ip}
		out["ip"] = ip
	}
	copyAs(out, data, "ips", "ips")

	for _, p := range camelPromotions {
		copyAs(out, data, p.from, p.to)
	}

	copyAs(out, data, "fingerprint", "fingerprint")
	copyAs(out, data, "technologies", "technologies")

	copyAs(out, data, "cdn", "cdn")
	if alive, ok := data["alive"]; ok {
		out["alive"] = alive
		if _, set := out["statusCode"]; Truthy(alive) && !set {
			// http_status would already have set statusCode; this is the
			// alive host that reported no status at all.
			out["statusCode"] = 0
		}
	}

	copyAs(out, data, "vulnerable", "vulnerable")

	copyAs(out, data, "length", "length")
	copyAs(out, data, "size", "size")
	copyAs(out, data, "status", "status")

	return out
}

// NormalizeAll maps every element of a decoded JSON array. Non-object
// elements become envelope-only records.
func NormalizeAll(items []any) []Record {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		rec, _ := AsRecord(it)
		out = append(out, Normalize(rec))
	}
	return out
}

func copyAs(dst, src Record, from, to string) {
	if v, ok := src[from]; ok {
		dst[to] = v
	}
}

func defaultString(m Record, key string) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return ""
}
