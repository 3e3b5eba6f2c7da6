package resume

import "fmt"

const extractionPrompt = `Return ONLY valid JSON EXACTLY in this shape:

{
  "personal": {
    "name": string | null,
    "email": string | null,
    "phone": string | null,
    "linkedin": string | null
  },
  "summary": string | null,
  "work_experience": [ { "role": string, "company": string, "start": string|null, "end": string|null, "description": string|null } ],
  "education": [ { "degree": string|null, "institution": string|null, "start": string|null, "end": string|null, "notes": string|null } ],
  "projects": [ { "name": string, "description": string|null, "technologies": [string] } ],
  "certifications": [ string ],
  "technical_skills": [ string ],
  "soft_skills": [ string ],
  "ai_feedback": {
    "rating_out_of_10": integer,
    "improvement_areas": [ string ],
    "suggested_skills_to_learn": [ string ]
  }
}

Parse the resume below. Produce JSON values; for fields you cannot find, set null or empty arrays as appropriate. Keep fields consistent. Do NOT output any extra text.

Resume text:
"""
%s
"""`

// BuildPrompt embeds the resume text, unmodified, into the extraction instruction.
func BuildPrompt(resumeText string) string {
	return fmt.Sprintf(extractionPrompt, resumeText)
}
