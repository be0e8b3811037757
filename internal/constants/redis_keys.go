package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "rm"

	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// SkillModulePrefix 技能模块
	SkillModulePrefix = "skill"

	// EntityParsed 解析结果实体
	EntityParsed = "parsed"
	// EntityVector 向量实体
	EntityVector = "vector"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToID MD5到简历ID的映射实体
	EntityMD5ToID = "md5_to_id"

	// KeyJobDescriptionParsed JD解析结果缓存 (STRING, JSON)
	// 格式: rm:job:parsed:{sha256(text)}
	KeyJobDescriptionParsed = AppPrefix + ":" + JobModulePrefix + ":" + EntityParsed + ":%s"

	// KeySkillVector 技能名向量缓存 (STRING, JSON数组)
	// 格式: rm:skill:vector:{model}:{name}
	KeySkillVector = AppPrefix + ":" + SkillModulePrefix + ":" + EntityVector + ":%s:%s"

	// KeyFileMD5Set 文件MD5集合，用于快速去重 (SET)
	// 格式: rm:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyFileMD5ToResumeID MD5到简历ID的映射 (STRING)
	// 格式: rm:file:md5_to_id:{md5}
	KeyFileMD5ToResumeID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToID + ":%s"
)
