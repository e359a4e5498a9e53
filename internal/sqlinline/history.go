package sqlinline

const QEnsurePhotoHistory = `--sql c44335c0-8f2a-478e-852c-0d3db41a6e96
create table if not exists photo_history (
  id text primary key,
  user_id text not null default 'default_user',
  original_filename text not null,
  generated_filename text not null,
  gender text not null,
  options jsonb not null default '{}'::jsonb,
  created_at timestamptz not null default now(),
  file_size bigint not null default 0,
  processing_time double precision not null default 0
);
create index if not exists photo_history_created_at_idx on photo_history (created_at desc);
create index if not exists photo_history_gender_idx on photo_history (gender);
`

const QInsertPhotoHistory = `--sql 276bd04f-fc2e-4386-8f4f-42a4a98396bd
insert into photo_history(
  id,
  user_id,
  original_filename,
  generated_filename,
  gender,
  options,
  created_at,
  file_size,
  processing_time
) values (
  $1::text,
  coalesce(nullif($2::text, ''), 'default_user'),
  $3::text,
  $4::text,
  $5::text,
  coalesce(nullif($6::text, ''), '{}')::jsonb,
  $7::timestamptz,
  $8::bigint,
  $9::float8
);
`

const QListPhotoHistory = `--sql f26bcc08-67e9-4ba0-b501-4e79fc22050e
select
  id,
  user_id,
  original_filename,
  generated_filename,
  gender,
  options::text,
  created_at,
  file_size,
  processing_time
from photo_history
where ($2::timestamptz is null or created_at >= $2::timestamptz)
  and ($3::timestamptz is null or created_at < $3::timestamptz)
  and ($4::text = '' or gender = $4::text)
  and ($5::text = '' or strpos(lower(original_filename), lower($5::text)) > 0)
order by created_at desc
limit $1::int;
`

const QPhotoHistorySummary = `--sql 69aea5ef-4ebe-42a4-9ba2-fc856f6ad97a
select
  count(*)::int,
  coalesce(avg(processing_time), 0)::float8,
  (count(*) filter (where created_at >= $1::timestamptz and created_at < $2::timestamptz))::int
from photo_history;
`

const QPhotoHistoryByGender = `--sql b8d414d6-7a7c-44a1-860c-1b6921e710d5
select gender, count(*)::int
from photo_history
group by gender;
`

const QPhotoHistoryDaily = `--sql abeab3a9-f824-43d8-8095-717ceb85851e
select
  date_trunc('day', created_at) as day,
  count(*)::int,
  (count(*) filter (where gender = 'male'))::int,
  (count(*) filter (where gender = 'female'))::int,
  coalesce(avg(processing_time), 0)::float8
from photo_history
where created_at >= $1::timestamptz
group by 1
order by 1 desc;
`

const QClearPhotoHistory = `--sql 839f04ec-7049-4e1d-b793-fade3ff5d5db
delete from photo_history;
`
